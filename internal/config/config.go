package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the console settings.
type Config struct {
	APIURL             string
	LogFile            string
	LogLevel           string
	RequestTimeout     time.Duration
	PageSize           int
	FilterDebounce     time.Duration
	ActionCloseDelay   time.Duration
	FeedbackCloseDelay time.Duration
	Poll               PollIntervals
}

// PollIntervals sets the cadence of each background feed.
type PollIntervals struct {
	Cluster        time.Duration
	SystemLogs     time.Duration
	ContainerStats time.Duration
}

// APIURLEnv overrides api_url when set.
const APIURLEnv = "DAHELL_API_URL"

const (
	defaultConfigPath         = "~/.config/dahell/config.toml"
	defaultAPIURL             = "http://localhost:8000/api"
	defaultLogFile            = "~/.local/state/dahell/dahell.log"
	defaultLogLevel           = "info"
	defaultRequestTimeout     = 10 * time.Second
	defaultPageSize           = 20
	defaultFilterDebounce     = 500 * time.Millisecond
	defaultActionCloseDelay   = 800 * time.Millisecond
	defaultFeedbackCloseDelay = time.Second
	defaultClusterPoll        = 3 * time.Second
	defaultSystemLogsPoll     = 5 * time.Second
	defaultContainerPoll      = 2 * time.Second
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:             defaultAPIURL,
		LogFile:            mustExpand(defaultLogFile),
		LogLevel:           defaultLogLevel,
		RequestTimeout:     defaultRequestTimeout,
		PageSize:           defaultPageSize,
		FilterDebounce:     defaultFilterDebounce,
		ActionCloseDelay:   defaultActionCloseDelay,
		FeedbackCloseDelay: defaultFeedbackCloseDelay,
		Poll: PollIntervals{
			Cluster:        defaultClusterPoll,
			SystemLogs:     defaultSystemLogsPoll,
			ContainerStats: defaultContainerPoll,
		},
	}
}

type rawConfig struct {
	APIURL               string `toml:"api_url"`
	LogFile              string `toml:"log_file"`
	LogLevel             string `toml:"log_level"`
	RequestTimeoutMS     int    `toml:"request_timeout_ms"`
	PageSize             int    `toml:"page_size"`
	FilterDebounceMS     int    `toml:"filter_debounce_ms"`
	ActionCloseDelayMS   int    `toml:"action_close_delay_ms"`
	FeedbackCloseDelayMS int    `toml:"feedback_close_delay_ms"`
	Poll                 struct {
		ClusterMS        int `toml:"cluster_ms"`
		SystemLogsMS     int `toml:"system_logs_ms"`
		ContainerStatsMS int `toml:"container_stats_ms"`
	} `toml:"poll"`
}

// Load reads the config at path, falling back to defaults when the file is
// missing. Empty or non-positive values also use defaults.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if raw.PageSize > 0 {
		cfg.PageSize = raw.PageSize
	}
	setMillis(&cfg.RequestTimeout, raw.RequestTimeoutMS)
	setMillis(&cfg.FilterDebounce, raw.FilterDebounceMS)
	setMillis(&cfg.ActionCloseDelay, raw.ActionCloseDelayMS)
	setMillis(&cfg.FeedbackCloseDelay, raw.FeedbackCloseDelayMS)
	setMillis(&cfg.Poll.Cluster, raw.Poll.ClusterMS)
	setMillis(&cfg.Poll.SystemLogs, raw.Poll.SystemLogsMS)
	setMillis(&cfg.Poll.ContainerStats, raw.Poll.ContainerStatsMS)

	applyEnv(&cfg)
	return cfg, nil
}

func setMillis(dst *time.Duration, ms int) {
	if ms > 0 {
		*dst = time.Duration(ms) * time.Millisecond
	}
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(APIURLEnv)); v != "" {
		cfg.APIURL = v
	}
}

// LogDir is the directory holding the log file.
func (c Config) LogDir() string {
	if strings.TrimSpace(c.LogFile) == "" {
		return filepath.Dir(mustExpand(defaultLogFile))
	}
	return filepath.Dir(c.LogFile)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
