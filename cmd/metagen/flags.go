package main

import "time"

// GlobalFlags holds persistent flags shared by all commands.
type GlobalFlags struct {
	ConfigPath string
	LogLevel   string
	NoColor    bool
}

// LaunchFlags holds flags for the launch command. Positional arguments
// (input, output, limit) take precedence over these.
type LaunchFlags struct {
	Input     string
	Output    string
	Limit     int
	Generator string
	WorkDir   string
}

// StatusFlags holds flags for the status command.
type StatusFlags struct {
	PID   int
	JobID string
}

// StopFlags holds flags for the stop command.
type StopFlags struct {
	PID  int
	Wait time.Duration
}

// LogsFlags holds flags for the logs command.
type LogsFlags struct {
	Lines  int
	Follow bool
}

// HistoryFlags holds flags for the history command.
type HistoryFlags struct {
	N int
}

// ServeFlags holds flags for the serve command.
type ServeFlags struct {
	Listen   string
	BasePath string
}
