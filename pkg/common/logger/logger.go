package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log is usable before Init; Init switches it to the service's JSON format.
var Log = logrus.New()

// serviceHook adds the service and host fields to entries that do not set them.
type serviceHook struct {
	fields logrus.Fields
}

func (h serviceHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h serviceHook) Fire(entry *logrus.Entry) error {
	for k, v := range h.fields {
		if _, ok := entry.Data[k]; !ok {
			entry.Data[k] = v
		}
	}
	return nil
}

// New builds a JSON logger writing to out at the given level. Unknown or empty
// levels fall back to info.
func New(out io.Writer, service, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	l.SetLevel(logLevel)

	fields := logrus.Fields{"service": service}
	if host, err := os.Hostname(); err == nil {
		fields["host"] = host
	}
	l.AddHook(serviceHook{fields: fields})
	return l
}

func Init(service string) {
	Log = New(os.Stdout, service, os.Getenv("LOG_LEVEL"))
}

func WithField(key string, value interface{}) *logrus.Entry {
	return Log.WithField(key, value)
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log.WithFields(fields)
}
