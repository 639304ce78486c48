package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the logger used by the guardrail chain and the CLI.
// Entries are emitted through a non-blocking console hook so a burst of
// check logs never stalls the request path. Callers should Close the hook
// on shutdown to drain buffered entries.
func NewLogger() (*logrus.Logger, *AsyncConsoleHook) {
	logger := logrus.New()

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "debug" {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	logger.SetOutput(io.Discard)

	hook := NewAsyncConsoleHook(1000)
	logger.AddHook(hook)

	return logger, hook
}
