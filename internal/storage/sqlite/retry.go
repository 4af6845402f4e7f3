package sqlite

import (
	"fmt"
	"strings"
	"time"
)

const maxBusyRetries = 5

// isSQLiteBusy reports whether err is a transient lock contention error worth
// retrying.
func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// retryOnBusy runs fn, retrying with exponential backoff while the database
// reports lock contention. Non-busy errors are returned immediately.
func retryOnBusy(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxBusyRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(10<<(attempt-1)) * time.Millisecond)
		}
		err = fn()
		if err == nil || !isSQLiteBusy(err) {
			return err
		}
	}
	return fmt.Errorf("database busy after %d attempts: %w", maxBusyRetries, err)
}
