package cfg

type MockLoader struct{}

func NewMockLoader() (*MockLoader, error) {
	return &MockLoader{}, nil
}

func (ml *MockLoader) Load() (*Config, error) {
	return &Config{
		// App
		App: App{
			Name:    "commit-census",
			Version: "0.0.1",
		},

		// Harvest
		Harvest: Harvest{
			Query:      `"Sure! Pl"`,
			DateField:  "committer",
			PerPage:    100,
			MaxPages:   10,
			MinDelayMs: 1200,
			OutFile:    "surepl-commits.json",
			RepoCache:  "surepl-repo-cache.json",
		},

		// GithubApi
		GithubApi: GithubApi{
			AccessToken:      "",
			SearchApiUrl:     "https://api.github.com/search/commits",
			RepoApiUrl:       "https://api.github.com/repos/",
			MaxSearchResults: 1000,
		},

		// Mysql
		Mysql: Mysql{
			Host:                  "127.0.0.1",
			Password:              "root",
			Username:              "root",
			Port:                  "3306",
			Database:              "commit_census",
			MaxIdleConnection:     10,
			MaxOpenConnection:     100,
			MaxLifeTimeConnection: 3600,
		},

		// Kafka
		Kafka: Kafka{
			Brokers: []string{"127.0.0.1:9092"},
			Producer: KafkaProducer{
				TopicCommit: "census.commits",
				TopicRepo:   "census.repos",
			},
		},

		// Server
		Server: Server{
			Port:        8000,
			FetchAssets: true,
		},
	}, nil
}
