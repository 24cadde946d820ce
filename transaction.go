package humpack

import "errors"

// Transactionable is the four-operation contract every transactional value
// supports. Begin while already in a transaction is a no-op, preserving
// the original rollback point for nested callers. Abort restores own state
// first, then forwards to whichever transactionable members are reachable
// from the restored state, so a member swapped in mid-transaction cannot
// leak an in-transaction flag.
//
// Transactions are a single-actor undo scope, not an isolation mechanism:
// concurrent mutation of one value from two logical transactions is
// undefined.
type Transactionable interface {
	Begin()
	InTransaction() bool
	Commit()
	Abort()
}

// ErrAborted is the designated abort signal for Atomically: return it from
// the scope body to roll back without reporting an error.
var ErrAborted = errors.New("humpack: transaction aborted")

// Atomically runs fn inside a transaction on t. A nil return commits;
// ErrAborted aborts and is swallowed; any other error (or a panic) aborts
// first and then propagates.
func Atomically(t Transactionable, fn func() error) (err error) {
	t.Begin()
	defer func() {
		if r := recover(); r != nil {
			t.Abort()
			panic(r)
		}
		if err == nil {
			t.Commit()
		} else {
			t.Abort()
			if errors.Is(err, ErrAborted) {
				err = nil
			}
		}
	}()
	err = fn()
	return
}
