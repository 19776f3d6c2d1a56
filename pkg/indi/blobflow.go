package indi

import (
	"context"
	"fmt"
	"sync"
)

// PingWaiter blocks until the client acknowledges the outstanding
// ping token, or ctx is cancelled. Production hosts implement this by
// reading replies off the client connection until a matching
// pingReply arrives; tests can substitute a fake that resolves
// immediately.
type PingWaiter func(ctx context.Context, token string) error

// BlobFlowControl serializes BLOB emission so at most one BLOB
// transfer is ever outstanding toward a given client connection at a
// time, reproducing the original IDSetBLOBVA ping/pong back-pressure
// scheme: before sending a new BLOB, wait for any previously issued
// ping to be acknowledged; after sending, issue a fresh ping and
// remember its token.
type BlobFlowControl struct {
	// sendMu is held for the full duration of one BeginBLOB call,
	// including the blocking wait, so two callers can never both
	// observe the same outstanding token and race past it — the thing
	// that actually enforces "at most one in flight".
	sendMu sync.Mutex

	mu      sync.Mutex
	counter uint64
	pending string
}

// NewBlobFlowControl returns flow control with no outstanding ping.
func NewBlobFlowControl() *BlobFlowControl {
	return &BlobFlowControl{}
}

// BeginBLOB blocks (via wait) until any prior outstanding ping has
// been acknowledged, then reserves and returns the token that must be
// sent as a pingRequest immediately after the BLOB itself is written.
// The token format "SetBLOB/<N>" is the literal wire format of the
// original implementation.
func (f *BlobFlowControl) BeginBLOB(ctx context.Context, wait PingWaiter) (token string, err error) {
	f.sendMu.Lock()
	defer f.sendMu.Unlock()

	f.mu.Lock()
	outstanding := f.pending
	f.mu.Unlock()

	if outstanding != "" {
		if err := wait(ctx, outstanding); err != nil {
			return "", fmt.Errorf("%w: waiting for prior BLOB ack %s: %v", ErrBlobBusy, outstanding, err)
		}
		f.mu.Lock()
		if f.pending == outstanding {
			f.pending = ""
		}
		f.mu.Unlock()
	}

	f.mu.Lock()
	f.counter++
	token = fmt.Sprintf("SetBLOB/%d", f.counter)
	f.pending = token
	f.mu.Unlock()
	return token, nil
}

// Ack records that the client has acknowledged token, clearing the
// outstanding marker so the next BeginBLOB need not wait.
func (f *BlobFlowControl) Ack(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == token {
		f.pending = ""
	}
}

// Pending returns the currently outstanding ping token, or "" if none.
func (f *BlobFlowControl) Pending() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}
