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

// Repo is the enrichment record for one repository. GitHub's own
// timestamps stay as the ISO strings the API returned.
type Repo struct {
	Model
	FullName        string    `json:"full_name" gorm:"column:full_name;type:varchar(255);primaryKey"`
	HtmlUrl         string    `json:"html_url" gorm:"column:html_url;type:varchar(512)"`
	Description     string    `json:"description" gorm:"column:description;type:text"`
	Homepage        string    `json:"homepage" gorm:"column:homepage;type:varchar(512)"`
	Topics          []string  `json:"topics" gorm:"column:topics;serializer:json;type:text"`
	Language        string    `json:"language" gorm:"column:language;type:varchar(255)"`
	OwnerLogin      string    `json:"owner_login" gorm:"column:owner_login;type:varchar(255)"`
	OwnerType       string    `json:"owner_type" gorm:"column:owner_type;type:varchar(64)"`
	CreatedAt       string    `json:"created_at" gorm:"column:created_at;type:varchar(32)"`
	UpdatedAt       string    `json:"updated_at" gorm:"column:updated_at;type:varchar(32)"`
	PushedAt        string    `json:"pushed_at" gorm:"column:pushed_at;type:varchar(32)"`
	StargazersCount int       `json:"stargazers_count" gorm:"column:stargazers_count;default:0"`
	ForksCount      int       `json:"forks_count" gorm:"column:forks_count;default:0"`
	Archived        bool      `json:"archived" gorm:"column:archived"`
	IsTemplate      bool      `json:"is_template" gorm:"column:is_template"`
	License         string    `json:"license" gorm:"column:license;type:varchar(64)"`
	InsertedAt      time.Time `json:"-" gorm:"column:inserted_at;not null;default:CURRENT_TIMESTAMP"`
}

func NewRepo(config *cfg.Config, logger log.Logger, mysql *db.Mysql) (*Repo, error) {
	return &Repo{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  mysql,
		},
	}, nil
}

func (r *Repo) TableName() string {
	return "repos"
}

func (r *Repo) Create(record Repo) error {
	ctx := context.Background()

	record.FullName = TruncateString(record.FullName, 250)
	record.InsertedAt = time.Now()

	db, err := r.Mysql.Db()
	if err != nil {
		r.Logger.Error(ctx, "Failed to get database connection: %v", err)
		return err
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "full_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"topics", "stargazers_count", "forks_count", "archived", "pushed_at", "updated_at"}),
	}).Create(&record).Error; err != nil {
		r.Logger.Error(ctx, "Failed to create repo: %v", err)
		return err
	}

	return nil
}

// CreateBatch upserts enrichment records, refreshing the mutable
// counters for repositories seen in earlier runs.
func (r *Repo) CreateBatch(records []Repo) error {
	db, err := r.Mysql.Db()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	now := time.Now()
	rows := make([]Repo, 0, len(records))
	for _, record := range records {
		record.Model = Model{}
		record.FullName = TruncateString(record.FullName, 250)
		record.InsertedAt = now
		rows = append(rows, record)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "full_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"topics", "stargazers_count", "forks_count", "archived", "pushed_at", "updated_at"}),
		}).CreateInBatches(rows, 100)

		if result.Error != nil {
			return fmt.Errorf("failed to batch create repos: %w", result.Error)
		}

		return nil
	})
}
