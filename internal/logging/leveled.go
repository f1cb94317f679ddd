package logger

import (
	"fmt"
	"strings"
)

// Leveled adapts Logger to the key/value logging interface used by retryablehttp.
type Leveled struct {
	Logger Logger
}

// Leveled returns an adapter that forwards to l.
func (l Logger) Leveled() Leveled {
	return Leveled{Logger: l}
}

func (a Leveled) Error(msg string, keysAndValues ...interface{}) {
	a.Logger.Errorf("%s", withFields(msg, keysAndValues))
}

func (a Leveled) Info(msg string, keysAndValues ...interface{}) {
	a.Logger.Infof("%s", withFields(msg, keysAndValues))
}

func (a Leveled) Debug(msg string, keysAndValues ...interface{}) {
	a.Logger.Debugf("%s", withFields(msg, keysAndValues))
}

func (a Leveled) Warn(msg string, keysAndValues ...interface{}) {
	a.Logger.Warnf("%s", withFields(msg, keysAndValues))
}

func withFields(msg string, keysAndValues []interface{}) string {
	if len(keysAndValues) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(keysAndValues); i += 2 {
		b.WriteString(" ")
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&b, "%v=%v", keysAndValues[i], keysAndValues[i+1])
		} else {
			fmt.Fprintf(&b, "%v", keysAndValues[i])
		}
	}
	return b.String()
}
