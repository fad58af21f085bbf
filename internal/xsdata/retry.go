package xsdata

import (
	"strings"
	"time"
)

const maxBusyRetries = 5

// isSQLiteBusy reports whether the error is a SQLITE_BUSY / database-locked
// condition worth retrying. modernc sqlite surfaces these as plain error
// strings, so match on the message.
func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// retryOnBusy runs fn, retrying with exponential backoff while it fails
// with a busy error. Non-busy errors return immediately; after
// maxBusyRetries attempts the last error is returned.
func retryOnBusy(fn func() error) error {
	var err error
	backoff := 10 * time.Millisecond
	for attempt := 0; attempt < maxBusyRetries; attempt++ {
		err = fn()
		if err == nil || !isSQLiteBusy(err) {
			return err
		}
		if attempt < maxBusyRetries-1 {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return err
}
