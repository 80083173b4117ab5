package log

import (
	"context"
	"fmt"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileSinkConfig configures the rotating plain-text log sink.
type FileSinkConfig struct {
	// Path is the active log file; rotated files are written
	// alongside it as path-<timestamp>.ext per lumberjack's naming.
	Path string
	// MaxSizeMB is the size a log file grows to before rotation.
	MaxSizeMB int
	// MaxBackups is the number of rotated files to retain.
	MaxBackups int
	// MaxAgeDays is how long to retain rotated files.
	MaxAgeDays int
}

// LogToFile subscribes to the logger's feed and writes each entry as
// a plain-text line to a lumberjack-rotated file, the second sink
// alongside LogToStdout/LogToDB.
func (l *Logger) LogToFile(ctx context.Context, cfg FileSinkConfig) {
	w := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	defer w.Close()

	feed, cancel := l.Subscribe()
	defer cancel()
	for {
		select {
		case log := <-feed:
			fmt.Fprintln(w, formatLogLine(log))
		case <-ctx.Done():
			return
		}
	}
}

func formatLogLine(log Log) string {
	level := "INFO"
	switch log.Level {
	case LevelError:
		level = "ERROR"
	case LevelWarning:
		level = "WARNING"
	case LevelInfo:
		level = "INFO"
	case LevelDebug:
		level = "DEBUG"
	}

	line := fmt.Sprintf("%d [%s]", log.Time, level)
	if log.Subsys != "" {
		line += " " + log.Subsys
	}
	if log.StreamID != "" {
		line += " (" + log.StreamID + ")"
	}
	return line + ": " + log.Msg
}
