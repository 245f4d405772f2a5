// Package logging provides the process-wide structured logger.
//
// Call sites keep the teacher's terse log.Printf-style call shape
// ("what happened", key, value, key, value...) but route through zap so
// fields are structured instead of string-formatted.
package logging

import "go.uber.org/zap"

var global *zap.SugaredLogger

func init() {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	global = l.Sugar()
}

// L returns the shared sugared logger.
func L() *zap.SugaredLogger {
	return global
}

// SetForTesting swaps the global logger, returning a restore func.
func SetForTesting(l *zap.SugaredLogger) func() {
	prev := global
	global = l
	return func() { global = prev }
}
