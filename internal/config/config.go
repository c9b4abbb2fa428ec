// Package config is the process-wide, read-mostly config store (§4.1).
// It is loaded once at startup from a YAML document and exposes
// read-only lookup by sensor name. Unknown keys are ignored; a missing
// key a reader needs is surfaced as an error from that reader's
// constructor, not from this package — the config store itself never
// decides whether a sensor is viable.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LogConfig is the log.* sub-tree (§4.2, §6).
type LogConfig struct {
	Filename string `yaml:"filename"`
	Level    int    `yaml:"level"`
	Pattern  string `yaml:"pattern"`
}

// AppConfig is the app.* sub-tree (§4.10, §6).
type AppConfig struct {
	Address         string `yaml:"address"`
	Port            int    `yaml:"port"`
	MaxMessageSize  int    `yaml:"max_message_size"`
	CheckingRateHz  int    `yaml:"checking_rate"`
	MetricsAddr     string `yaml:"metrics_addr"`
}

// SensorParams is one sensor's keyed sub-tree (§3). Only type/topic/rate
// are named explicitly; everything else is sensor-specific "extras" kept
// as a raw map so new reader kinds never require a config package change.
type SensorParams struct {
	Type  string `yaml:"type"`
	Topic string `yaml:"topic"`
	Rate  int    `yaml:"rate"`

	Extras map[string]any `yaml:"-"`
}

// rawDoc mirrors the on-disk shape before extras get split out.
type rawDoc struct {
	Log     LogConfig                 `yaml:"log"`
	App     AppConfig                 `yaml:"app"`
	Sensors []string                  `yaml:"sensors"`
	Rest    map[string]any            `yaml:",inline"`
}

// Config is the fully loaded, read-only document (§4.1).
type Config struct {
	Log     LogConfig
	App     AppConfig
	Sensors []string
	params  map[string]SensorParams
}

// Load reads and parses the YAML document at path. The single-write-
// before-any-read invariant (§5) is enforced by convention: Load is
// called exactly once, at startup, before any reader touches Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var doc rawDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg := &Config{
		Log:     doc.Log,
		App:     doc.App,
		Sensors: doc.Sensors,
		params:  make(map[string]SensorParams, len(doc.Sensors)),
	}

	for _, name := range doc.Sensors {
		tree, ok := doc.Rest[name].(map[string]any)
		if !ok {
			// No mapping sub-tree for a listed sensor; leave it absent so
			// reader construction reports the missing-config error (§7).
			continue
		}
		sp := SensorParams{Extras: map[string]any{}}
		for k, v := range tree {
			switch k {
			case "type":
				sp.Type, _ = v.(string)
			case "topic":
				sp.Topic, _ = v.(string)
			case "rate":
				sp.Rate = toInt(v)
			default:
				sp.Extras[k] = v
			}
		}
		cfg.params[name] = sp
	}

	return cfg, nil
}

// Sensor returns the parsed params for a sensor name and whether they
// were present at all. Reader constructors call this, then pull their
// own extras out of Extras (§4.1: "absence of a key the reader needs is
// a fatal construction error for that reader").
func (c *Config) Sensor(name string) (SensorParams, bool) {
	sp, ok := c.params[name]
	return sp, ok
}

// String fetches a required string extra. ok is false if the key is
// absent or not a string.
func (sp SensorParams) String(key string) (string, bool) {
	v, ok := sp.Extras[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int fetches a required integer extra, accepting YAML's native int
// decoding.
func (sp SensorParams) Int(key string) (int, bool) {
	v, ok := sp.Extras[key]
	if !ok {
		return 0, false
	}
	return toInt(v), true
}

// Bool fetches a required boolean extra.
func (sp SensorParams) Bool(key string) (bool, bool) {
	v, ok := sp.Extras[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Nested fetches a required nested sub-tree extra (e.g. device.*,
// filter.* for the LIDAR, §4.8).
func (sp SensorParams) Nested(key string) (map[string]any, bool) {
	v, ok := sp.Extras[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
