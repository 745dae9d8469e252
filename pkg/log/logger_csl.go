package log

import (
	"context"
	"log"
	"os"
)

// CslLogger writes prefixed lines to stderr. Good enough for a CLI run;
// anything smarter can implement Logger and be swapped in.
type CslLogger struct {
	out *log.Logger
}

func NewCslLogger() (*CslLogger, error) {
	return &CslLogger{
		out: log.New(os.Stderr, "", log.LstdFlags),
	}, nil
}

func (l *CslLogger) logf(level string, format string, args []interface{}) {
	l.out.Printf("["+level+"] "+format, args...)
}

func (l *CslLogger) Info(ctx context.Context, format string, args ...interface{}) {
	l.logf("INFO", format, args)
}

func (l *CslLogger) Alert(ctx context.Context, format string, args ...interface{}) {
	l.logf("ALERT", format, args)
}

func (l *CslLogger) Error(ctx context.Context, format string, args ...interface{}) {
	l.logf("ERROR", format, args)
}

func (l *CslLogger) Warn(ctx context.Context, format string, args ...interface{}) {
	l.logf("WARN", format, args)
}

func (l *CslLogger) Debug(ctx context.Context, format string, args ...interface{}) {
	l.logf("DEBUG", format, args)
}

func (l *CslLogger) Notice(ctx context.Context, format string, args ...interface{}) {
	l.logf("NOTICE", format, args)
}

func (l *CslLogger) Critical(ctx context.Context, format string, args ...interface{}) {
	l.logf("CRITICAL", format, args)
}

func (l *CslLogger) Emergency(ctx context.Context, format string, args ...interface{}) {
	l.logf("EMERGENCY", format, args)
}
