package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fielddash/internal/config"
)

func lastEntry(t *testing.T, content []byte) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("Log output is not valid JSON: %v", err)
	}
	return entry
}

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "nested", "fielddash.log")

	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	if logger == nil {
		t.Fatal("Logger is nil")
	}
	if slog.Default() != logger {
		t.Error("InitializeLogger did not install the slog default")
	}

	logger.Info("upload accepted", "files", 2)
	CloseLogFile()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	entry := lastEntry(t, content)
	if entry["msg"] != "upload accepted" {
		t.Errorf("Expected msg='upload accepted', got %v", entry["msg"])
	}
	if entry["files"] != float64(2) {
		t.Errorf("Expected files=2, got %v", entry["files"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("Expected level='INFO', got %v", entry["level"])
	}
}

func TestInitializeLoggerOnce(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	first, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "console"})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	second, _ := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "console"})
	if first != second {
		t.Error("second InitializeLogger call replaced the logger")
	}
}

func TestInitializeLoggerBadPath(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := InitializeLogger(config.LoggingConfig{Output: "both", FilePath: filepath.Join(blocker, "app.log")})
	if err == nil {
		t.Fatal("expected an error for a log path below a regular file")
	}
}

func TestTraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggingConfig{Level: "debug"}, &buf)

	ctx := WithTraceID(context.Background(), "trace-123")
	logger.InfoContext(ctx, "filters updated")

	entry := lastEntry(t, buf.Bytes())
	if entry["trace_id"] != "trace-123" {
		t.Errorf("Expected trace_id='trace-123', got %v", entry["trace_id"])
	}

	buf.Reset()
	logger.With("component", "session").InfoContext(context.Background(), "no trace")
	entry = lastEntry(t, buf.Bytes())
	if _, ok := entry["trace_id"]; ok {
		t.Error("trace_id added without one in context")
	}
	if entry["component"] != "session" {
		t.Errorf("Expected component='session', got %v", entry["component"])
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level   string
		logged  slog.Level
		dropped slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 4},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"warning", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"verbose", slog.LevelInfo, slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(config.LoggingConfig{Level: tt.level}, &buf)

			logger.Log(context.Background(), tt.dropped, "below threshold")
			if buf.Len() != 0 {
				t.Errorf("level %s logged a %s record", tt.level, tt.dropped)
			}

			logger.Log(context.Background(), tt.logged, "at threshold")
			if !strings.Contains(buf.String(), "at threshold") {
				t.Errorf("level %s dropped a %s record", tt.level, tt.logged)
			}
		})
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	traceID := GetTraceID(ctx)
	if traceID == "" {
		t.Fatal("Expected trace ID to be generated")
	}

	if GetTraceID(EnsureTraceID(ctx)) != traceID {
		t.Error("EnsureTraceID changed existing trace ID")
	}

	if GetTraceID(context.Background()) != "" {
		t.Error("Expected no trace ID on a bare context")
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggingConfig{Level: "info", Format: "TEXT"}, &buf)

	logger.InfoContext(WithTraceID(context.Background(), "t-1"), "sheet built", "sheet", "fl")

	out := buf.String()
	if !strings.Contains(out, "msg=\"sheet built\"") || !strings.Contains(out, "sheet=fl") {
		t.Errorf("Expected key=value output, got %q", out)
	}
	if !strings.Contains(out, "trace_id=t-1") {
		t.Errorf("Expected trace_id in text output, got %q", out)
	}
}

func TestCloseLogFileIdempotent(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	if err := CloseLogFile(); err != nil {
		t.Fatalf("closing without a file: %v", err)
	}
	if _, err := InitializeLogger(config.LoggingConfig{Output: "file", FilePath: filepath.Join(t.TempDir(), "a.log")}); err != nil {
		t.Fatal(err)
	}
	if err := CloseLogFile(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := CloseLogFile(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
