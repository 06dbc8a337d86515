package config

// Config tunes the settings tool. Name doubles as the environment variable
// prefix: each field can be overridden by NAME_ + its uppercased yaml tag.
type Config struct {
	Name             string `yaml:"name"`
	SettingsPath     string `yaml:"settings_path"`
	LockMaxRetries   int    `yaml:"lock_max_retries"`
	LockRetryDelayMS int    `yaml:"lock_retry_delay_ms"`
	Verbose          bool   `yaml:"verbose"`
}
