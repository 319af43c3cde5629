package monitoring

import "log"

// Logger is a printf-style log sink. Components accept a Logger so the
// embedding application decides where diagnostics go.
type Logger func(format string, v ...interface{})

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf Logger = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f Logger) {
	if f == nil {
		Logf = Nop
		return
	}
	Logf = f
}

// Nop discards every message.
func Nop(string, ...interface{}) {}

// OrDefault returns l, or the package logger when l is nil. The package logger
// is resolved at call time so a later SetLogger still takes effect.
func OrDefault(l Logger) Logger {
	if l != nil {
		return l
	}
	return func(format string, v ...interface{}) {
		Logf(format, v...)
	}
}

// WithPrefix returns a Logger that prepends prefix to every format string.
func WithPrefix(l Logger, prefix string) Logger {
	l = OrDefault(l)
	return func(format string, v ...interface{}) {
		l(prefix+format, v...)
	}
}
