package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
)

func logCloser(c io.Closer, l *log.Logger) {
	if err := c.Close(); err != nil {
		l.Printf("failed to close handle: %+v", err)
	}
}

// formatPqError renders the details of a PostgreSQL or SQLite error.
func formatPqError(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		var b strings.Builder
		fmt.Fprintf(&b, "Severity   : %s\n", pqErr.Severity)
		fmt.Fprintf(&b, "Error Code : %s (%s)\n", pqErr.Code, pqErr.Code.Name())
		fmt.Fprintf(&b, "Message    : %s\n", pqErr.Message)
		if pqErr.Detail != "" {
			fmt.Fprintf(&b, "Detail     : %s\n", pqErr.Detail)
		}
		if pqErr.Hint != "" {
			fmt.Fprintf(&b, "Hint       : %s\n", pqErr.Hint)
		}
		if pqErr.Position != "" {
			fmt.Fprintf(&b, "Position   : %s\n", pqErr.Position)
		}
		return b.String()
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return fmt.Sprintf("Error Code : %d\nMessage    : %s\n", liteErr.Code(), liteErr.Error())
	}
	return err.Error()
}
