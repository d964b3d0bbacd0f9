package cssembed

import "github.com/sirupsen/logrus"

func (e *Embedder) logf(fields logrus.Fields, format string, args ...interface{}) {
	if e.EnableLog {
		e.logger.WithFields(fields).Infof(format, args...)
	}
}

// logVerbosef logs the resolution steps, which are only
// interesting when something goes wrong.
func (e *Embedder) logVerbosef(fields logrus.Fields, format string, args ...interface{}) {
	if e.EnableLog && e.EnableVerboseLog {
		e.logger.WithFields(fields).Infof(format, args...)
	}
}

func (e *Embedder) logWarn(fields logrus.Fields, format string, args ...interface{}) {
	if e.EnableLog {
		e.logger.WithFields(fields).Warnf(format, args...)
	}
}

func (e *Embedder) logError(fields logrus.Fields, format string, args ...interface{}) {
	if e.EnableLog {
		e.logger.WithFields(fields).Errorf(format, args...)
	}
}
