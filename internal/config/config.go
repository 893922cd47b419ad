// Package config loads the switch's runtime configuration from
// environment variables and an optional YAML file, using Viper
// so the environment always wins over the file for container
// deployments while still allowing a local dev file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full set of knobs cmd/switch needs to start.
type Config struct {
	Host      string   `mapstructure:"host"`
	Port      int      `mapstructure:"port"`
	AdminAddr string   `mapstructure:"admin_addr"`
	Acquirers []string `mapstructure:"acquirers"`
	Issuers   []string `mapstructure:"issuers"`
	LogLevel  string   `mapstructure:"log_level"`
	LogFormat string   `mapstructure:"log_format"`
	LogFile   string   `mapstructure:"log_file"`

	TriggerPath string `mapstructure:"trigger_path"`

	SamplePAN    string `mapstructure:"sample_pan"`
	SampleAmount string `mapstructure:"sample_amount"`
	SampleRRN    string `mapstructure:"sample_rrn"`
	SampleSTAN   string `mapstructure:"sample_stan"`
}

func defaults() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         5000,
		AdminAddr:    ":8080",
		LogLevel:     "info",
		LogFormat:    "text",
		TriggerPath:  "./trigger.signal",
		SamplePAN:    "4111111111111111",
		SampleAmount: "000000010000",
		SampleRRN:    "000000000001",
		SampleSTAN:   "000001",
	}
}

// Load reads configuration from, in ascending precedence: built-in
// defaults, an optional YAML file at configPath (skipped silently if
// absent), then environment variables (HOST, PORT, ACQUIRERS, ISSUERS,
// LOG_LEVEL, ...).
func Load(configPath string) (Config, error) {
	v := viper.New()
	cfg := defaults()
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("admin_addr", cfg.AdminAddr)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("trigger_path", cfg.TriggerPath)
	v.SetDefault("sample_pan", cfg.SamplePAN)
	v.SetDefault("sample_amount", cfg.SampleAmount)
	v.SetDefault("sample_rrn", cfg.SampleRRN)
	v.SetDefault("sample_stan", cfg.SampleSTAN)

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("config: reading %s: %w", configPath, err)
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var out Config
	if err := v.Unmarshal(&out); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	// Viper's AutomaticEnv does not bind slice keys unless something
	// has already asked for them; a comma-separated host list is the
	// idiomatic shape for ACQUIRERS/ISSUERS env vars.
	if hosts := v.GetString("acquirers"); hosts != "" && len(out.Acquirers) == 0 {
		out.Acquirers = splitHosts(hosts)
	}
	if hosts := v.GetString("issuers"); hosts != "" && len(out.Issuers) == 0 {
		out.Issuers = splitHosts(hosts)
	}

	return out, nil
}

func splitHosts(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ListenAddr is the host:port the switch's acquirer/issuer listener binds.
func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
