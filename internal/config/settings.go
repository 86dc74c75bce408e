package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// SettingSource represents where a setting's value comes from.
type SettingSource string

const (
	SourceEnv     SettingSource = "env"
	SourceConfig  SettingSource = "config"
	SourceDefault SettingSource = "default"
)

// SettingStatus describes one effective setting for the status command.
type SettingStatus struct {
	Name   string        `json:"name"`
	Key    string        `json:"key"`
	Value  string        `json:"value"`
	Source SettingSource `json:"source"`
}

// CheckSettings reports the effective value and origin of the settings an
// operator most often needs to confirm.
func CheckSettings(cfg *Config) []SettingStatus {
	return []SettingStatus{
		checkSetting("PDF endpoint", "pdf.endpoint", RedactURL(cfg.PDF.Endpoint), RedactURL(defaultString("pdf.endpoint"))),
		checkSetting("PDF timeout", "pdf.timeout", cfg.PDF.Timeout.String(), defaultValue("pdf.timeout")),
		checkSetting("Listen address", "api.port", cfg.API.Addr(), fmt.Sprintf("%s:%s", defaultValue("api.host"), defaultValue("api.port"))),
		checkSetting("Session TTL", "session.ttl", cfg.Session.TTL.String(), defaultValue("session.ttl")),
		checkSetting("Output directory", "output.dir", cfg.Output.Dir, defaultValue("output.dir")),
		checkSetting("Timezone", "timezone", cfg.Timezone, defaultValue("timezone")),
	}
}

// checkSetting determines whether value came from env, a config file or defaults.
func checkSetting(name, key, value, def string) SettingStatus {
	status := SettingStatus{Name: name, Key: key, Value: value}

	switch {
	case os.Getenv(EnvName(key)) != "":
		status.Source = SourceEnv
	case value != def:
		status.Source = SourceConfig
	default:
		status.Source = SourceDefault
	}
	return status
}

// EnvName returns the environment variable overriding key, e.g.
// "pdf.endpoint" -> "DEBITNOTE_PDF_ENDPOINT".
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// RedactURL hides any credentials embedded in an endpoint URL.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Redacted()
}

func defaultValue(key string) string {
	v := viperDefaults()
	return fmt.Sprint(v.Get(key))
}

func defaultString(key string) string {
	return viperDefaults().GetString(key)
}
