package main

import (
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger installs the default slog logger. Records go to stderr
// unless a log file is configured, in which case the file is rotated by
// lumberjack. The returned closer releases the file.
func configureLogger(v *viper.Viper, stderr io.Writer) (*slog.Logger, io.Closer) {
	level := parseSlogLevel(v.GetString(keyLogLevel), slog.LevelInfo)
	if v.GetBool(keyLogVerbose) {
		level = slog.LevelDebug
	}

	var (
		w      = stderr
		closer io.Closer
	)
	if path := strings.TrimSpace(v.GetString(keyLogFile)); path != "" {
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    v.GetInt(keyLogMaxSize),
			MaxBackups: v.GetInt(keyLogMaxBackups),
			MaxAge:     v.GetInt(keyLogMaxAge),
			Compress:   v.GetBool(keyLogCompress),
		}
		w, closer = lj, lj
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, closer
}
