package domain

import "time"

// Config mirrors ~/.maildraft/config.yaml.
type Config struct {
	ConfigFormatVersion string          `yaml:"config_format_version"`
	DataDir             string          `yaml:"data_dir"`
	Backend             BackendSettings `yaml:"backend"`
	History             HistorySettings `yaml:"history"`
	Voice               VoiceSettings   `yaml:"voice"`
	Log                 LogSettings     `yaml:"log"`
}

// BackendSettings describes how to launch and reach the generation backend.
type BackendSettings struct {
	Interpreter    string   `yaml:"interpreter"`
	Script         string   `yaml:"script"`
	Args           []string `yaml:"args"`
	WorkingDir     string   `yaml:"working_dir"`
	ReadyMarker    string   `yaml:"ready_marker"`
	ReadyOnStderr  bool     `yaml:"ready_on_stderr"`
	Endpoint       string   `yaml:"endpoint"`
	StartupTimeout string   `yaml:"startup_timeout"`
	RequestTimeout string   `yaml:"request_timeout"`
}

// StartupTimeoutDuration parses StartupTimeout, falling back to the default.
func (b BackendSettings) StartupTimeoutDuration() time.Duration {
	return parseDurationOr(b.StartupTimeout, DefaultBackendStartupTimeout)
}

// RequestTimeoutDuration parses RequestTimeout, falling back to the default.
func (b BackendSettings) RequestTimeoutDuration() time.Duration {
	return parseDurationOr(b.RequestTimeout, DefaultBackendRequestTimeout)
}

// HistorySettings selects the history driver.
type HistorySettings struct {
	Driver string `yaml:"driver"`
}

// VoiceSettings configures the external transcriber.
type VoiceSettings struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// LogSettings configures the logger.
type LogSettings struct {
	Level string `yaml:"level"`
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
