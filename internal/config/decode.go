package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Sink kinds accepted by the decode command.
const (
	SinkPostgres = "postgres"
	SinkJSONL    = "jsonl"
)

// DecodeConfig holds configuration for the decode command.
type DecodeConfig struct {
	In          string
	Sink        string
	Out         string
	Errors      string
	PGDSN       string
	Workers     int
	BatchSize   int
	EventKeyMap map[string]string
	MetricsAddr string
	LogLevel    string
}

// LoadDecode merges config file, environment variables, and flags into DecodeConfig.
func LoadDecode(cfgFile string, flags *pflag.FlagSet) (DecodeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"in":         "./data/events.jsonl",
		"sink":       SinkJSONL,
		"out":        "./data/records.jsonl",
		"errors":     "./data/decode_errors.jsonl",
		"workers":    4,
		"batch-size": 100,
		"log-level":  "info",
	})
	if err != nil {
		return DecodeConfig{}, err
	}

	cfg := DecodeConfig{
		In:          v.GetString("in"),
		Sink:        strings.ToLower(strings.TrimSpace(v.GetString("sink"))),
		Out:         v.GetString("out"),
		Errors:      v.GetString("errors"),
		PGDSN:       v.GetString("pg-dsn"),
		Workers:     v.GetInt("workers"),
		BatchSize:   v.GetInt("batch-size"),
		EventKeyMap: getStringMap(v, "event-key-map"),
		MetricsAddr: v.GetString("metrics-addr"),
		LogLevel:    v.GetString("log-level"),
	}

	switch cfg.Sink {
	case SinkJSONL:
	case SinkPostgres:
		if cfg.PGDSN == "" {
			return DecodeConfig{}, fmt.Errorf("pg-dsn is required for the postgres sink")
		}
	default:
		return DecodeConfig{}, fmt.Errorf("unsupported sink: %s", cfg.Sink)
	}
	if cfg.Workers <= 0 {
		return DecodeConfig{}, fmt.Errorf("workers must be greater than zero")
	}
	if cfg.BatchSize <= 0 {
		return DecodeConfig{}, fmt.Errorf("batch-size must be greater than zero")
	}

	return cfg, nil
}

func getStringMap(v *viper.Viper, key string) map[string]string {
	if !v.IsSet(key) {
		return map[string]string{}
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case map[string]string:
		return typed
	case map[string]interface{}:
		out := make(map[string]string, len(typed))
		for k, v := range typed {
			out[k] = fmt.Sprintf("%v", v)
		}
		return out
	case string:
		return parseStringMap(typed)
	case []string:
		return parseStringMap(strings.Join(typed, ","))
	default:
		return map[string]string{}
	}
}

func parseStringMap(input string) map[string]string {
	out := make(map[string]string)
	if strings.TrimSpace(input) == "" {
		return out
	}
	pairs := strings.Split(input, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}
