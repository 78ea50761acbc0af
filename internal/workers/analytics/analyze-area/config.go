package analyzearea

import (
	"time"

	"site-traffic-workers/internal/common/config"
)

const defaultAlertThreshold = 75

type Config struct {
	Timeout time.Duration

	AlertsEnabled  bool
	AlertTopicARN  string
	AlertThreshold int
}

// LoadConfig reads the worker timeout and the SNS alert settings.
func LoadConfig(cfg *config.Config) *Config {
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	sns := cfg.Notifications.SNS

	threshold := int(sns.ScoreThreshold)
	if threshold <= 0 {
		threshold = defaultAlertThreshold
	}
	return &Config{
		Timeout:        config.GetDuration(wcfg.Timeout),
		AlertsEnabled:  sns.Enabled,
		AlertTopicARN:  sns.TopicARN,
		AlertThreshold: threshold,
	}
}
