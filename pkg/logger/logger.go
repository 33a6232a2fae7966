package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	log  = logrus.New()
	once sync.Once
)

// Setup configures the shared logger. Production gets JSON output, everything
// else gets the text formatter with full timestamps.
func Setup(appEnv, level string) *logrus.Logger {
	once.Do(func() {
		log.SetOutput(os.Stdout)
		if appEnv == "production" {
			log.SetFormatter(&logrus.JSONFormatter{})
		} else {
			log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		}

		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			lvl = logrus.InfoLevel
		}
		log.SetLevel(lvl)
	})
	return log
}

// L returns the shared logger.
func L() *logrus.Logger {
	return log
}

func WithField(key string, value interface{}) *logrus.Entry {
	return log.WithField(key, value)
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return log.WithFields(fields)
}

func WithError(err error) *logrus.Entry {
	return log.WithError(err)
}
