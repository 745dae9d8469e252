package cfg

type (
	App struct {
		Name    string
		Version string
	}

	// Harvest holds the knobs for a commit-search run.
	Harvest struct {
		Query       string
		DateField   string // "committer" or "author"
		Start       string // YYYY-MM-DD, empty means today-89
		End         string // YYYY-MM-DD, empty means today
		PerPage     int
		MaxPages    int
		MinDelayMs  int
		OutFile     string
		EnrichRepos bool
		RepoCache   string
		MaxRepos    int
		SkipTopics  bool
		Publish     bool
	}

	GithubApi struct {
		AccessToken      string
		SearchApiUrl     string
		RepoApiUrl       string
		MaxSearchResults int
	}

	Mysql struct {
		Host                  string
		Port                  string
		Username              string
		Password              string
		Database              string
		MaxIdleConnection     int
		MaxOpenConnection     int
		MaxLifeTimeConnection int
	}

	KafkaProducer struct {
		TopicCommit string
		TopicRepo   string
	}

	Kafka struct {
		Brokers  []string
		Producer KafkaProducer
	}

	Server struct {
		Port        int
		FetchAssets bool
	}
)

type Config struct {
	App       App
	Harvest   Harvest
	GithubApi GithubApi
	Mysql     Mysql
	Kafka     Kafka
	Server    Server
}
