package indi

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobFlowControlFirstBeginNeverWaits(t *testing.T) {
	t.Parallel()
	f := NewBlobFlowControl()

	waited := false
	token, err := f.BeginBLOB(context.Background(), func(ctx context.Context, token string) error {
		waited = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, waited, "no prior ping outstanding, must not wait")
	assert.True(t, strings.HasPrefix(token, "SetBLOB/"))
	assert.Equal(t, token, f.Pending())
}

func TestBlobFlowControlSecondBeginWaitsForFirst(t *testing.T) {
	t.Parallel()
	f := NewBlobFlowControl()

	first, err := f.BeginBLOB(context.Background(), neverWait(t))
	require.NoError(t, err)

	var waitedFor string
	second, err := f.BeginBLOB(context.Background(), func(ctx context.Context, token string) error {
		waitedFor = token
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, first, waitedFor)
	assert.NotEqual(t, first, second)
}

func TestBlobFlowControlTokensAreUnique(t *testing.T) {
	t.Parallel()
	f := NewBlobFlowControl()
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		token, err := f.BeginBLOB(context.Background(), func(ctx context.Context, token string) error { return nil })
		require.NoError(t, err)
		assert.False(t, seen[token], "token %s reused", token)
		seen[token] = true
	}
}

func TestBlobFlowControlAckClearsPending(t *testing.T) {
	t.Parallel()
	f := NewBlobFlowControl()
	token, err := f.BeginBLOB(context.Background(), func(ctx context.Context, token string) error { return nil })
	require.NoError(t, err)
	f.Ack(token)
	assert.Equal(t, "", f.Pending())
}

func TestBlobFlowControlConcurrentBeginsSerialize(t *testing.T) {
	t.Parallel()
	f := NewBlobFlowControl()

	var mu sync.Mutex
	tokens := map[string]bool{}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := f.BeginBLOB(context.Background(), func(ctx context.Context, token string) error { return nil })
			assert.NoError(t, err)
			mu.Lock()
			tokens[token] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, tokens, 20, "every concurrent BeginBLOB must get a distinct token")
}

func TestBlobFlowControlConcurrentBeginsNeverOverlapAWait(t *testing.T) {
	t.Parallel()
	f := NewBlobFlowControl()

	var inWait int32
	var maxObservedInWait int32
	var mu sync.Mutex
	waiting := func(ctx context.Context, token string) error {
		mu.Lock()
		inWait++
		if inWait > maxObservedInWait {
			maxObservedInWait = inWait
		}
		mu.Unlock()

		mu.Lock()
		inWait--
		mu.Unlock()
		return nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.BeginBLOB(context.Background(), waiting)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, maxObservedInWait, int32(1), "BeginBLOB must serialize: only one caller may ever be inside wait at a time")
}

func neverWait(t *testing.T) PingWaiter {
	return func(ctx context.Context, token string) error {
		t.Fatalf("unexpected wait for token %s", token)
		return nil
	}
}
