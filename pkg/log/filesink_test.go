package log

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogToFileWritesFormattedLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gavl.log")

	ctx, cancel, logger := newTestLogger()
	defer cancel()

	fileCtx, fileCancel := context.WithCancel(ctx)
	go logger.LogToFile(fileCtx, FileSinkConfig{Path: path, MaxSizeMB: 10, MaxBackups: 1, MaxAgeDays: 1})

	logger.Error().Src("container").StreamID("stream-2").Msg("handshake failed")
	time.Sleep(20 * time.Millisecond)
	fileCancel()
	time.Sleep(5 * time.Millisecond)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	got := string(data)
	for _, want := range []string{"[ERROR]", "container", "stream-2", "handshake failed"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected log line to contain %q, got %q", want, got)
		}
	}
}
