// Package lgr provides the shared structured logger for the Signboard application.
package lgr

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/natefinch/lumberjack"
)

// Logger is the shared application logger. It writes to stdout until Init
// is called with a log directory.
var Logger = slog.New(slog.NewTextHandler(os.Stdout, nil))

// Init reconfigures the shared logger to write to both stdout and a
// rotating file under dir. An empty dir keeps the stdout-only logger.
func Init(dir string) error {
	if dir == "" {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "signboard.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
	}

	Logger = slog.New(slog.NewTextHandler(io.MultiWriter(os.Stdout, rotator), nil))
	return nil
}
