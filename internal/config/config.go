package config

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/stretching-coach-ai/metagen/internal/job"
	"github.com/stretching-coach-ai/metagen/internal/logger"
)

// Config is the top-level TOML structure.
//
// Example:
//
//	generator = "python3 scripts/generate_metadata_openai.py"
//	input = "data/filtered/filtered_data.json"
//	output = "data/enhanced/enhanced_data.json"
//	log_dir = "logs"
//	env = ["OPENAI_MODEL=gpt-4o-mini"]
//	env_files = [".env"]
//
//	[log]
//	path = "logs/metagen.log"
//	level = "info"
//
//	[history]
//	enabled = true
//	dsn = "logs/history.db"
//
//	[serve]
//	listen = ":8080"
//	base_path = "/api"
type Config struct {
	Generator string   `toml:"generator" mapstructure:"generator"`
	Input     string   `toml:"input" mapstructure:"input"`
	Output    string   `toml:"output" mapstructure:"output"`
	WorkDir   string   `toml:"workdir" mapstructure:"workdir"`
	LogDir    string   `toml:"log_dir" mapstructure:"log_dir"`
	Env       []string `toml:"env" mapstructure:"env"`
	EnvFiles  []string `toml:"env_files" mapstructure:"env_files"`

	Log     logger.Config `toml:"log" mapstructure:"log"`
	History HistoryConfig `toml:"history" mapstructure:"history"`
	Serve   ServeConfig   `toml:"serve" mapstructure:"serve"`
}

// HistoryConfig selects the launch-history sink.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	DSN     string `toml:"dsn" mapstructure:"dsn"` // sqlite path or sqlite:// DSN
}

// ServeConfig configures the optional HTTP API.
type ServeConfig struct {
	Listen   string `toml:"listen" mapstructure:"listen"`
	BasePath string `toml:"base_path" mapstructure:"base_path"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogDir:  job.DefaultLogDir,
		History: HistoryConfig{Enabled: true, DSN: filepath.Join(job.DefaultLogDir, "history.db")},
		Serve:   ServeConfig{Listen: ":8080", BasePath: "/api"},
	}
}

// Load reads a TOML config file. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if c.LogDir == "" {
		c.LogDir = job.DefaultLogDir
	}
	if c.History.Enabled && c.History.DSN == "" {
		c.History.DSN = filepath.Join(c.LogDir, "history.db")
	}
	return c, nil
}

// Spec builds the base job spec from the config. Flag values override the
// returned fields at the call site; unset fields fall to job defaults.
func (c *Config) Spec() (job.Spec, error) {
	env, err := c.MergedEnv()
	if err != nil {
		return job.Spec{}, err
	}
	return job.Spec{
		Generator: c.Generator,
		Input:     c.Input,
		Output:    c.Output,
		WorkDir:   c.WorkDir,
		Env:       env,
		LogDir:    c.LogDir,
	}, nil
}

// MergedEnv loads env_files (dotenv format) in order and applies the
// inline env list last, so explicit entries win. The result is extra
// KEY=VALUE pairs layered on top of the OS environment at launch.
func (c *Config) MergedEnv() ([]string, error) {
	m := make(map[string]string)
	for _, p := range c.EnvFiles {
		pairs, err := godotenv.Read(filepath.Clean(p))
		if err != nil {
			return nil, fmt.Errorf("load env file %s: %w", p, err)
		}
		for k, v := range pairs {
			m[k] = v
		}
	}
	for _, kv := range c.Env {
		if k, v, ok := cutKV(kv); ok {
			m[k] = v
		}
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	return out, nil
}

func cutKV(kv string) (string, string, bool) {
	for i := 0; i < len(kv); i++ {
		if kv[i] == '=' {
			return kv[:i], kv[i+1:], true
		}
	}
	return "", "", false
}
