// Package logging builds the structured logger shared by the client stores.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLevel = "info"

const (
	timeKey    = "timestamp"
	levelKey   = "severity"
	messageKey = "message"
	loggerKey  = "logger"
)

// New returns a JSON logger writing to path. The terminal UI owns stdout, so
// an empty path logs to stderr instead. Unknown levels fall back to info.
func New(level, path string) (*zap.Logger, error) {
	atomic := zap.NewAtomicLevel()
	if err := atomic.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		_ = atomic.UnmarshalText([]byte(defaultLevel))
	}

	output := "stderr"
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		if err := os.MkdirAll(filepath.Dir(trimmed), 0o700); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		output = trimmed
	}

	cfg := zap.Config{
		Level:    atomic,
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: messageKey,
			TimeKey:    timeKey,
			LevelKey:   levelKey,
			NameKey:    loggerKey,
			EncodeTime: zapcore.RFC3339NanoTimeEncoder,
			EncodeLevel: func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
				enc.AppendString(strings.ToUpper(level.String()))
			},
			EncodeName:    zapcore.FullNameEncoder,
			CallerKey:     "caller",
			EncodeCaller:  zapcore.ShortCallerEncoder,
			StacktraceKey: "stacktrace",
		},
		OutputPaths:       []string{output},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// Humanize renders one JSON log line as "15:04:05 LEVEL name: message k=v".
// Lines that are not JSON come back unchanged.
func Humanize(line string) string {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return line
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(trimmed), &entry); err != nil {
		return line
	}

	var b strings.Builder
	if ts, ok := entry[timeKey].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			b.WriteString(t.Local().Format("15:04:05"))
			b.WriteByte(' ')
		}
	}
	if lvl, ok := entry[levelKey].(string); ok {
		b.WriteString(fmt.Sprintf("%-5s ", lvl))
	}
	if name, ok := entry[loggerKey].(string); ok && name != "" {
		b.WriteString(name)
		b.WriteString(": ")
	}
	if msg, ok := entry[messageKey].(string); ok {
		b.WriteString(msg)
	}

	keys := make([]string, 0, len(entry))
	for k := range entry {
		switch k {
		case timeKey, levelKey, loggerKey, messageKey, "caller", "stacktrace":
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry[k])
	}
	return b.String()
}
