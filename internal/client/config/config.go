package config

import "time"

// S3 configures direct media uploads to S3-compatible storage. Uploads go
// through the API when Bucket is empty.
type S3 struct {
	Bucket    string `env:"BUCKET"`
	Region    string `env:"REGION"`
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	// PublicURL is the prefix returned for uploaded objects. Defaults to
	// Endpoint/Bucket when empty.
	PublicURL string `env:"PUBLIC_URL"`
}

// Enabled reports whether direct uploads are configured.
func (s S3) Enabled() bool {
	return s.Bucket != ""
}

// Config holds runtime settings for the guIA CLI.
type Config struct {
	APIBaseURL     string        `env:"API_URL"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	SessionDB      string        `env:"SESSION_DB"`
	LogLevel       string        `env:"LOG_LEVEL"`

	// BootstrapTimeout bounds token validation at startup.
	BootstrapTimeout time.Duration `env:"BOOTSTRAP_TIMEOUT"`
	// LogoutTimeout bounds the best-effort remote logout.
	LogoutTimeout time.Duration `env:"LOGOUT_TIMEOUT"`

	RefreshCheckInterval time.Duration `env:"REFRESH_CHECK_INTERVAL"`
	RefreshLeeway        time.Duration `env:"REFRESH_LEEWAY"`

	// ToastMaxVisible caps the notification queue; 0 means unbounded.
	ToastMaxVisible int `env:"TOAST_MAX_VISIBLE"`

	S3 S3 `envPrefix:"S3_"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8080/api/v1/"
	c.RequestTimeout = 30 * time.Second
	c.SessionDB = "guia_session.db"
	c.LogLevel = "info"
	c.BootstrapTimeout = 10 * time.Second
	c.LogoutTimeout = 5 * time.Second
	c.RefreshCheckInterval = time.Minute
	c.RefreshLeeway = 2 * time.Minute
	c.ToastMaxVisible = 5
	c.S3 = S3{Region: "auto"}
}

// LoadConfig constructs a Config, applies defaults, then overlays the
// environment, a JSON file and command-line flags, in that order.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
