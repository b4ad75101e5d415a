package logging

import (
	"io"
	"net/url"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestFields are attached to every log line of a single fetch operation.
func RequestFields(id uuid.UUID, u *url.URL, key string) logrus.Fields {
	fields := logrus.Fields{
		"request_id": id.String(),
		"key":        key,
	}

	if u != nil {
		fields["url"] = u.Redacted()
	}

	return fields
}

// Discard returns a logger that drops everything, used by tests.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
