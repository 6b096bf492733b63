package logger

import (
	"io"
	"os"
	"path/filepath"

	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a logrus logger that also writes to a rotating file under the log directory.
type Logger struct {
	*logrus.Logger

	// Output is shared with the HTTP access log.
	Output io.Writer
	file   *lumberjack.Logger
}

func NewLogger(logDir string, debug bool) (*Logger, error) {
	if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
		return nil, err
	}

	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "app.log"),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	multiWriter := io.MultiWriter(os.Stdout, logFile)

	l := logrus.New()
	l.SetOutput(multiWriter)
	if debug {
		l.SetLevel(logrus.DebugLevel)
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetLevel(logrus.InfoLevel)
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	return &Logger{Logger: l, Output: multiWriter, file: logFile}, nil
}

// AccessLogConfig returns the fiber access log settings writing to the same outputs.
func (l *Logger) AccessLogConfig() fiberLogger.Config {
	return fiberLogger.Config{
		Output:     l.Output,
		Format:     "${time} | ${status} | ${latency} | ${method} | ${path} | ${locals:requestid} | ${error}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}
}

func (l *Logger) Close() error {
	return l.file.Close()
}

// Discard returns a logger that drops everything. Used by tests and helpers
// that run without a configured log directory.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
