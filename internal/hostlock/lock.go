// Package hostlock serialises access to a single InDesign Server.
//
// A server processes one document at a time and keeps open documents
// between scripts, so every job holds a lease on its host for the whole
// open/operate/close cycle.
package hostlock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ErrBusy is returned when the lease could not be acquired before the
// wait expired.
var ErrBusy = errors.New("host busy")

// ErrLost is returned by Release when the lease expired or was taken over
// while it was held.
var ErrLost = errors.New("host lease lost")

// Locker hands out leases on named hosts.
type Locker interface {
	// Acquire blocks until the lease on host is held, wait elapses, or ctx
	// is done. A zero wait tries exactly once.
	Acquire(ctx context.Context, host string, wait time.Duration) (Lease, error)
	Ping(ctx context.Context) error
}

// Lease is a held lock. Release is safe to call more than once.
type Lease interface {
	Release(ctx context.Context) error
}

// BusyError names the host that could not be leased.
type BusyError struct {
	Host string
}

func (e *BusyError) Error() string { return fmt.Sprintf("%s: %s", ErrBusy, e.Host) }
func (e *BusyError) Unwrap() error { return ErrBusy }

const retryInterval = 50 * time.Millisecond

// poll calls try until it reports success or the deadline passes.
func poll(ctx context.Context, host string, wait time.Duration, try func() (bool, error)) error {
	deadline := time.Now().Add(wait)
	for {
		ok, err := try()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return &BusyError{Host: host}
		}
		t := time.NewTimer(min(retryInterval, time.Until(deadline)))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func newToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
