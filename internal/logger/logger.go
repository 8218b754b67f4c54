package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

func init() {
	log = logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
	log.SetOutput(os.Stdout)
}

func Get() *logrus.Logger {
	return log
}

// SetLevel applies the configured level; unknown values keep info.
func SetLevel(level string) {
	if lvl, err := logrus.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	}
}

// WithModule tags entries with the functional area that emitted them.
func WithModule(module string) *logrus.Entry {
	return log.WithField("module", module)
}
