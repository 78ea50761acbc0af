package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Traffic       TrafficConfig           `mapstructure:"traffic"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	HealthPort  int    `mapstructure:"health_port"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// --- Traffic analysis ---

// TrafficConfig groups the collaborators of the area analysis engine.
type TrafficConfig struct {
	Directory  DirectoryConfig  `mapstructure:"directory"`
	VisitStats VisitStatsConfig `mapstructure:"visit_stats"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Engine     EngineConfig     `mapstructure:"engine"`
}

// DirectoryConfig selects and tunes the venue directory.
type DirectoryConfig struct {
	Backend          string `mapstructure:"backend"` // elasticsearch | overpass
	Index            string `mapstructure:"index"`
	OverpassEndpoint string `mapstructure:"overpass_endpoint"`
	MaxResults       int    `mapstructure:"max_results"`
	SortHint         string `mapstructure:"sort_hint"`
	Timeout          int    `mapstructure:"timeout"` // milliseconds
}

// VisitStatsConfig configures the per-venue visit analytics API.
type VisitStatsConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	BaseURL           string `mapstructure:"base_url"`
	APIKey            string `mapstructure:"api_key"`
	Timeout           int    `mapstructure:"timeout"` // milliseconds
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
	Burst             int    `mapstructure:"burst"`
}

// CacheConfig selects the analysis cache adapter.
type CacheConfig struct {
	Backend      string `mapstructure:"backend"` // redis | postgres | memory
	TTL          int    `mapstructure:"ttl"`     // milliseconds
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	KeyPrefix    string `mapstructure:"key_prefix"`
}

// EngineConfig tunes AnalyzeArea itself.
type EngineConfig struct {
	MaxConcurrentLookups int   `mapstructure:"max_concurrent_lookups"`
	JitterSeed           int64 `mapstructure:"jitter_seed"` // 0 means non-deterministic
}

// NotificationConfig holds settings for opportunity alerts.
type NotificationConfig struct {
	SNS struct {
		Enabled        bool    `mapstructure:"enabled"`
		Region         string  `mapstructure:"region"`
		TopicARN       string  `mapstructure:"topic_arn"`
		ScoreThreshold float64 `mapstructure:"score_threshold"`
	} `mapstructure:"sns"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
