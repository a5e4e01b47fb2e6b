// -----------------------------------------------------------------------------
// Query Logger
// -----------------------------------------------------------------------------
// The logging contract the façade observes queries through, and a standard
// implementation over the log package. Logging is a side-observation: the
// interface returns nothing the query path depends on, so a quiet or broken
// logger can never fail a statement.
//
// Slow-query warnings go through a rate limiter. One hot endpoint crossing
// the threshold would otherwise flood the log with an identical warning per
// request.
// -----------------------------------------------------------------------------

package database

import (
	"log"
	"time"

	"golang.org/x/time/rate"
)

// Logger observes query execution. LogQuery is called right before the
// driver runs the statement and returns the start time that is later handed
// to LogQueryResult.
type Logger interface {
	LogQuery(sqlText string, bindings any) time.Time
	LogQueryResult(sqlText string, bindings any, start time.Time, rowCount int)
	Debug(message string, context map[string]any)
	Error(message string, context map[string]any)
}

// StdLogger logs queries through the standard log package.
type StdLogger struct {
	logger        *log.Logger
	slowThreshold time.Duration
	slowLimiter   *rate.Limiter
}

// NewStdLogger builds a standard query logger. A nil *log.Logger uses the
// process default; a zero threshold disables slow-query warnings.
func NewStdLogger(out *log.Logger, slowThreshold time.Duration) *StdLogger {
	if out == nil {
		out = log.Default()
	}
	return &StdLogger{
		logger:        out,
		slowThreshold: slowThreshold,
		// At most one warning burst of five per ten seconds.
		slowLimiter: rate.NewLimiter(rate.Every(10*time.Second), 5),
	}
}

// LogQuery implements Logger.
func (l *StdLogger) LogQuery(sqlText string, bindings any) time.Time {
	l.logger.Printf("🔄 Query: %s | bindings: %v", sqlText, bindings)
	return time.Now()
}

// LogQueryResult implements Logger.
func (l *StdLogger) LogQueryResult(sqlText string, bindings any, start time.Time, rowCount int) {
	elapsed := time.Since(start)
	if l.slowThreshold > 0 && elapsed >= l.slowThreshold {
		if l.slowLimiter.Allow() {
			l.logger.Printf("⚠️  Slow query (%s): %s | bindings: %v", elapsed.Round(time.Millisecond), sqlText, bindings)
		}
		return
	}
	l.logger.Printf("✅ Query completed in %s (%d rows)", elapsed.Round(time.Microsecond), rowCount)
}

// Debug implements Logger.
func (l *StdLogger) Debug(message string, context map[string]any) {
	l.logger.Printf("🔄 %s | %v", message, context)
}

// Error implements Logger.
func (l *StdLogger) Error(message string, context map[string]any) {
	l.logger.Printf("❌ %s | %v", message, context)
}
