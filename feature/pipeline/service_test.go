package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeExecutor struct {
	calls   atomic.Int32
	active  atomic.Int32
	peak    atomic.Int32
	started chan struct{}
	release chan struct{}
	err     error
}

func (f *fakeExecutor) Run(ctx context.Context, scope Scope) (*Report, error) {
	f.calls.Add(1)
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	report := &Report{Scope: scope, StartedAt: time.Now(), FinishedAt: time.Now()}
	if f.err != nil {
		report.Error = f.err.Error()
	}
	return report, f.err
}

func TestService_Trigger(t *testing.T) {
	ctx := context.Background()

	t.Run("Remembers Last Report", func(t *testing.T) {
		svc := NewService(&fakeExecutor{}, zap.NewNop())
		assert.Nil(t, svc.Last())

		report, shared, err := svc.Trigger(ctx, ScopeBooks)
		require.NoError(t, err)
		assert.False(t, shared)
		assert.Equal(t, report, svc.Last())
	})

	t.Run("Failed Run Is Remembered", func(t *testing.T) {
		svc := NewService(&fakeExecutor{err: errors.New("boom")}, zap.NewNop())
		_, _, err := svc.Trigger(ctx, ScopeAll)
		assert.ErrorContains(t, err, "boom")
		require.NotNil(t, svc.Last())
		assert.Equal(t, "boom", svc.Last().Error)
	})

	t.Run("Concurrent Triggers Share A Run", func(t *testing.T) {
		exec := &fakeExecutor{started: make(chan struct{}, 2), release: make(chan struct{})}
		svc := NewService(exec, zap.NewNop())

		var (
			wg     sync.WaitGroup
			shares atomic.Int32
		)
		trigger := func() {
			defer wg.Done()
			_, shared, err := svc.Trigger(ctx, ScopeNotes)
			assert.NoError(t, err)
			if shared {
				shares.Add(1)
			}
		}

		wg.Add(1)
		go trigger()
		<-exec.started
		assert.Equal(t, 1, svc.Running())

		wg.Add(1)
		go trigger()
		time.Sleep(50 * time.Millisecond)
		close(exec.release)
		wg.Wait()

		assert.Equal(t, int32(1), exec.calls.Load())
		assert.Equal(t, int32(2), shares.Load())
		assert.Equal(t, 0, svc.Running())
	})

	t.Run("Different Scopes Run One After Another", func(t *testing.T) {
		exec := &fakeExecutor{started: make(chan struct{}, 2), release: make(chan struct{}, 2)}
		svc := NewService(exec, zap.NewNop())

		var wg sync.WaitGroup
		for _, scope := range []Scope{ScopeNotes, ScopeAll} {
			wg.Add(1)
			go func(scope Scope) {
				defer wg.Done()
				_, shared, err := svc.Trigger(ctx, scope)
				assert.NoError(t, err)
				assert.False(t, shared)
			}(scope)
		}

		<-exec.started
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, int32(1), exec.calls.Load())
		assert.Equal(t, 1, svc.Running())

		exec.release <- struct{}{}
		<-exec.started
		exec.release <- struct{}{}
		wg.Wait()

		assert.Equal(t, int32(2), exec.calls.Load())
		assert.Equal(t, int32(1), exec.peak.Load())
		assert.Equal(t, 0, svc.Running())
	})
}
