package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/surepl/commit-census/cfg"
	"github.com/surepl/commit-census/internal/model"
	"github.com/surepl/commit-census/pkg/db"
	"github.com/surepl/commit-census/pkg/kafka"
	"github.com/surepl/commit-census/pkg/log"
)

func main() {
	// Parse command line arguments
	consumerType := flag.String("type", "", "Type of consumer to run (commit, repo)")
	flag.Parse()

	if *consumerType == "" {
		fmt.Println("Please specify a consumer type: -type=[commit|repo]")
		os.Exit(1)
	}

	// Load configuration
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger and database
	logger, _ := log.NewCslLogger()
	mysql, err := db.NewMysql(config)
	if err != nil {
		logger.Error(context.Background(), "Failed to connect to database: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	commitModel, _ := model.NewCommit(config, logger, mysql)
	repoModel, _ := model.NewRepo(config, logger, mysql)

	if err := mysql.Migrate(commitModel, repoModel); err != nil {
		logger.Error(ctx, "Failed to migrate database: %v", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	switch *consumerType {
	case "commit":
		startCommitConsumer(ctx, config, logger, commitModel)
	case "repo":
		startRepoConsumer(ctx, config, logger, repoModel)
	default:
		logger.Error(ctx, "Unknown consumer type: %s", *consumerType)
		os.Exit(1)
	}

	<-sigCh
	logger.Info(ctx, "Received shutdown signal, gracefully shutting down...")
	cancel()
}

func startCommitConsumer(ctx context.Context, config *cfg.Config, logger log.Logger, commitModel *model.Commit) {
	consumer := kafka.NewConsumer(config, logger, config.Kafka.Producer.TopicCommit, "commit-consumer-group")

	batchSize := 100
	batchTimeout := 5 * time.Second
	records := make(chan model.Commit, batchSize*2)

	go processBatchedCommits(ctx, records, batchSize, batchTimeout, logger, commitModel)

	consumer.RegisterHandler("commit", func(data []byte) error {
		var record model.Commit
		if err := json.Unmarshal(data, &record); err != nil {
			return fmt.Errorf("failed to unmarshal commit record: %w", err)
		}
		select {
		case records <- record:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})

	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error(ctx, "Commit consumer error: %v", err)
		}
	}()

	logger.Info(ctx, "Commit consumer started successfully")
}

func processBatchedCommits(ctx context.Context, records <-chan model.Commit, batchSize int,
	batchTimeout time.Duration, logger log.Logger, commitModel *model.Commit) {

	var batch []model.Commit
	timer := time.NewTimer(batchTimeout)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := commitModel.CreateBatch(batch); err != nil {
			logger.Error(ctx, "Failed to save batch of %d commits: %v", len(batch), err)
		} else {
			logger.Info(ctx, "Saved batch of %d commits", len(batch))
		}
		batch = nil
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case record := <-records:
			batch = append(batch, record)
			if len(batch) >= batchSize {
				flush()
				timer.Reset(batchTimeout)
			}
		case <-timer.C:
			flush()
			timer.Reset(batchTimeout)
		}
	}
}

func startRepoConsumer(ctx context.Context, config *cfg.Config, logger log.Logger, repoModel *model.Repo) {
	consumer := kafka.NewConsumer(config, logger, config.Kafka.Producer.TopicRepo, "repo-consumer-group")

	consumer.RegisterHandler("repo", func(data []byte) error {
		var record model.Repo
		if err := json.Unmarshal(data, &record); err != nil {
			return fmt.Errorf("failed to unmarshal repo record: %w", err)
		}
		if err := repoModel.Create(record); err != nil {
			return fmt.Errorf("failed to save repo to database: %w", err)
		}
		return nil
	})

	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error(ctx, "Repo consumer error: %v", err)
		}
	}()

	logger.Info(ctx, "Repository consumer started successfully")
}
