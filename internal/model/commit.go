package model

import (
	"context"
	"fmt"
	"time"

	"github.com/surepl/commit-census/cfg"
	"github.com/surepl/commit-census/pkg/db"
	"github.com/surepl/commit-census/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Commit is one harvested commit-search hit. The json tags define the
// flat record written to the output payload and published to Kafka;
// the gorm tags define the consumer's table.
type Commit struct {
	Model
	Sha           string    `json:"sha" gorm:"column:sha;type:varchar(64);primaryKey"`
	Repo          string    `json:"repo" gorm:"column:repo;type:varchar(255);primaryKey"`
	RepoUrl       string    `json:"repo_url" gorm:"column:repo_url;type:varchar(512)"`
	CommitUrl     string    `json:"commit_url" gorm:"column:commit_url;type:varchar(512)"`
	Message       string    `json:"message" gorm:"column:message;type:text"`
	AuthorLogin   string    `json:"author_login" gorm:"column:author_login;type:varchar(255)"`
	AuthorUrl     string    `json:"author_url" gorm:"column:author_url;type:varchar(512)"`
	AuthorName    string    `json:"author_name" gorm:"column:author_name;type:varchar(255)"`
	AuthorDate    string    `json:"author_date" gorm:"column:author_date;type:varchar(32)"`
	CommitterDate string    `json:"committer_date" gorm:"column:committer_date;type:varchar(32)"`
	InsertedAt    time.Time `json:"-" gorm:"column:inserted_at;not null;default:CURRENT_TIMESTAMP"`
}

func NewCommit(config *cfg.Config, logger log.Logger, mysql *db.Mysql) (*Commit, error) {
	return &Commit{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  mysql,
		},
	}, nil
}

func (c *Commit) TableName() string {
	return "commits"
}

// Key is the dedup identity: repository plus sha, falling back to the
// commit URL when the search hit carried no sha.
func (c *Commit) Key() string {
	id := c.Sha
	if id == "" {
		id = c.CommitUrl
	}
	return c.Repo + ":" + id
}

func (c *Commit) Create(record Commit) error {
	ctx := context.Background()

	record.Sha = TruncateString(record.Sha, 64)
	record.Repo = TruncateString(record.Repo, 250)
	record.Message = TruncateString(record.Message, 65000)
	record.InsertedAt = time.Now()

	db, err := c.Mysql.Db()
	if err != nil {
		c.Logger.Error(ctx, "Failed to get database connection: %v", err)
		return err
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sha"}, {Name: "repo"}},
		DoNothing: true,
	}).Create(&record).Error; err != nil {
		c.Logger.Error(ctx, "Failed to create commit: %v", err)
		return err
	}

	return nil
}

// CreateBatch upserts harvested commits in one transaction. Duplicate
// hits across runs are left untouched, first record wins.
func (c *Commit) CreateBatch(records []Commit) error {
	db, err := c.Mysql.Db()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	now := time.Now()
	rows := make([]Commit, 0, len(records))
	for _, record := range records {
		record.Model = Model{}
		record.Sha = TruncateString(record.Sha, 64)
		record.Repo = TruncateString(record.Repo, 250)
		record.Message = TruncateString(record.Message, 65000)
		record.InsertedAt = now
		rows = append(rows, record)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sha"}, {Name: "repo"}},
			DoNothing: true,
		}).CreateInBatches(rows, 100)

		if result.Error != nil {
			return fmt.Errorf("failed to batch create commits: %w", result.Error)
		}

		return nil
	})
}
