package crawler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBrowser() *Browser {
	return &Browser{
		cfg: BrowserConfig{NavTimeout: time.Minute, SelectorTimeout: time.Minute},
		tab: context.Background(),
	}
}

func TestBrowserOpContextForwardsCallerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	opCtx, cleanup := testBrowser().opContext(ctx, time.Minute)
	defer cleanup()

	require.NoError(t, opCtx.Err())
	cancel()

	select {
	case <-opCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("operation context not cancelled with the caller's context")
	}
}

func TestBrowserOpContextTimeout(t *testing.T) {
	opCtx, cleanup := testBrowser().opContext(context.Background(), 10*time.Millisecond)
	defer cleanup()

	select {
	case <-opCtx.Done():
		assert.ErrorIs(t, opCtx.Err(), context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("operation context did not time out")
	}
}

func TestBrowserOpContextCleanupReleases(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opCtx, cleanup := testBrowser().opContext(ctx, time.Minute)
	cleanup()
	assert.Error(t, opCtx.Err(), "cleanup cancels the operation context")
}
