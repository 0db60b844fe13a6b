package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/guia-app/guia/internal/flagx"
	"github.com/guia-app/guia/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer and zero
// values mean "not set", so a partial file only overrides what it names.
type JsonConfig struct {
	APIBaseURL           string         `json:"api_base_url"`
	RequestTimeout       timex.Duration `json:"request_timeout"`
	SessionDB            *string        `json:"session_db"`
	LogLevel             string         `json:"log_level"`
	BootstrapTimeout     timex.Duration `json:"bootstrap_timeout"`
	LogoutTimeout        timex.Duration `json:"logout_timeout"`
	RefreshCheckInterval timex.Duration `json:"refresh_check_interval"`
	RefreshLeeway        timex.Duration `json:"refresh_leeway"`
	ToastMaxVisible      *int           `json:"toast_max_visible"`
	S3                   *jsonS3        `json:"s3"`
}

type jsonS3 struct {
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	PublicURL string `json:"public_url"`
}

// parseJson overlays Config with the JSON file named by -c/-config.
// Nothing happens when no file is named. Panics on read or decode errors.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.SessionDB != nil {
		cfg.SessionDB = *jc.SessionDB
	}
	if jc.ToastMaxVisible != nil {
		cfg.ToastMaxVisible = *jc.ToastMaxVisible
	}

	for dst, src := range map[*time.Duration]timex.Duration{
		&cfg.RequestTimeout:       jc.RequestTimeout,
		&cfg.BootstrapTimeout:     jc.BootstrapTimeout,
		&cfg.LogoutTimeout:        jc.LogoutTimeout,
		&cfg.RefreshCheckInterval: jc.RefreshCheckInterval,
		&cfg.RefreshLeeway:        jc.RefreshLeeway,
	} {
		if !src.IsZero() {
			*dst = src.Duration
		}
	}

	if jc.S3 != nil {
		setString(&cfg.S3.Bucket, jc.S3.Bucket)
		setString(&cfg.S3.Region, jc.S3.Region)
		setString(&cfg.S3.Endpoint, jc.S3.Endpoint)
		setString(&cfg.S3.AccessKey, jc.S3.AccessKey)
		setString(&cfg.S3.SecretKey, jc.S3.SecretKey)
		setString(&cfg.S3.PublicURL, jc.S3.PublicURL)
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
