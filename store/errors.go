package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/viant/docstore/pool"
)

var (
	// ErrRecordWrite matches every *RecordError via errors.Is.
	ErrRecordWrite = errors.New("record write failed")
	// ErrMissingID is the cause recorded for nodes without an id.
	ErrMissingID = errors.New("document has no id")
)

// RecordError describes a single node that failed within a batch.
type RecordError struct {
	// Index is the node position in traversal order.
	Index int
	ID    string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("store: record %d (%q): %v", e.Index, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

func (e *RecordError) Is(target error) bool { return target == ErrRecordWrite }

// fatal reports whether err must abort the whole batch rather than be
// recorded against a single node.
func fatal(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, pool.ErrPoolClosed) ||
		errors.Is(err, pool.ErrPoolExhausted)
}
