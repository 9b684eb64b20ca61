package setupLogger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	logLVLInfo  = "info"
	logLVLDebug = "debug"
	logLVLWarn  = "warning"
	logLVLError = "error"
)

// New returns a text logger writing to stdout, or to a daily file under logDir
// when logDir is set. The returned closer must be closed on shutdown.
func New(logLVL, logDir string) (*slog.Logger, io.Closer, error) {
	var out io.WriteCloser = nopCloser{os.Stdout}

	if logDir != "" {
		todayDate := time.Now().Format(time.DateOnly)
		logPath, err := filepath.Abs(filepath.Join(logDir, fmt.Sprintf("%s.txt", todayDate)))
		if err != nil {
			return nil, nil, err
		}

		// os.O_APPEND keeps earlier entries of the same day
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		out = logFile
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level(logLVL)})), out, nil
}

func level(logLVL string) slog.Level {
	switch logLVL {
	case logLVLDebug:
		return slog.LevelDebug
	case logLVLWarn:
		return slog.LevelWarn
	case logLVLError:
		return slog.LevelError
	case logLVLInfo:
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
