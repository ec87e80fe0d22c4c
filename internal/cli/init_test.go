package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/Afatsiawu/FMS/internal/config"
	applog "github.com/Afatsiawu/FMS/internal/log"
)

func TestSetupLoggerHonoursLogLevel(t *testing.T) {
	tests := []struct {
		level string
		debug bool
		warn  bool
	}{
		{"debug", true, true},
		{"", false, true},
		{"error", false, false},
	}
	for _, tt := range tests {
		t.Setenv("LOG_LEVEL", tt.level)
		logger := SetupLogger(applog.ComponentApp)
		ctx := context.Background()
		if got := logger.Enabled(ctx, slog.LevelDebug); got != tt.debug {
			t.Errorf("LOG_LEVEL=%q debug enabled = %v", tt.level, got)
		}
		if got := logger.Enabled(ctx, slog.LevelWarn); got != tt.warn {
			t.Errorf("LOG_LEVEL=%q warn enabled = %v", tt.level, got)
		}
	}
}

func TestOpenBackendSQLite(t *testing.T) {
	logger := applog.New(applog.Config{Level: slog.LevelError})
	cfg := &config.Config{DataBackend: "sqlite", SQLiteDBPath: filepath.Join(t.TempDir(), "fms.db")}

	res := OpenBackend(context.Background(), logger, cfg)
	defer res.Cleanup()
	if err := res.Ready(context.Background()); err != nil {
		t.Fatalf("Ready: %v", err)
	}
}
