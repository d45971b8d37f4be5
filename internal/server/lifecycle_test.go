package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// blockingService runs until Stop and records the order it was stopped in.
type blockingService struct {
	name    string
	started atomic.Bool
	stop    chan struct{}
	once    sync.Once
	order   *stopOrder
}

type stopOrder struct {
	mu    sync.Mutex
	names []string
}

func (o *stopOrder) add(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.names = append(o.names, name)
}

func newBlocking(name string, order *stopOrder) *blockingService {
	return &blockingService{name: name, stop: make(chan struct{}), order: order}
}

func (b *blockingService) Start() error {
	b.started.Store(true)
	<-b.stop
	return nil
}

func (b *blockingService) Stop() {
	b.once.Do(func() {
		b.order.add(b.name)
		close(b.stop)
	})
}

func runAsync(ctx context.Context, lc *Lifecycle) <-chan error {
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()
	return done
}

func TestLifecycle_StopsInReverseOrder(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	order := &stopOrder{}
	db := newBlocking("postgres", order)
	tel := newBlocking("telnet", order)
	lc.Add("postgres", db)
	lc.Add("telnet", tel)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, lc)
	require.Eventually(t, func() bool { return db.started.Load() && tel.started.Load() }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down")
	}
	assert.Equal(t, []string{"telnet", "postgres"}, order.names)
}

func TestLifecycle_ServiceFailureStopsTheRest(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	order := &stopOrder{}
	db := newBlocking("postgres", order)
	lc.Add("postgres", db)
	lc.Add("telnet", &FuncService{
		StartFn: func() error { return errors.New("address in use") },
		StopFn:  func() {},
	})

	select {
	case err := <-runAsync(context.Background(), lc):
		assert.ErrorContains(t, err, "service telnet")
		assert.ErrorContains(t, err, "address in use")
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle ignored a failed service")
	}
	assert.Equal(t, []string{"postgres"}, order.names)
}

func TestLifecycle_StopTimeout(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	lc.SetStopTimeout(50 * time.Millisecond)
	hang := make(chan struct{})
	t.Cleanup(func() { close(hang) })
	lc.Add("telemetry", &FuncService{
		StartFn: func() error { <-hang; return nil },
		StopFn:  func() { <-hang },
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, lc)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown waited on a hung service")
	}
}

func TestFuncService(t *testing.T) {
	var started, stopped bool
	svc := &FuncService{
		StartFn: func() error { started = true; return nil },
		StopFn:  func() { stopped = true },
	}
	require.NoError(t, svc.Start())
	svc.Stop()
	assert.True(t, started)
	assert.True(t, stopped)
}
