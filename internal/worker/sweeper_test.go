package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type mockSweeper struct {
	calls atomic.Int32
	err   error
}

func (m *mockSweeper) Sweep(context.Context) (int, error) {
	m.calls.Add(1)
	return 1, m.err
}

func TestSweepWorker_SweepsImmediatelyAndOnTick(t *testing.T) {
	svc := &mockSweeper{}
	w := NewSweepWorker(svc, 10*time.Millisecond, zerolog.Nop())

	w.Start(context.Background())
	assert.Eventually(t, func() bool { return svc.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	w.Stop()

	after := svc.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, svc.calls.Load(), "no sweeps after Stop")
}

func TestSweepWorker_KeepsGoingAfterError(t *testing.T) {
	svc := &mockSweeper{err: errors.New("db down")}
	w := NewSweepWorker(svc, 5*time.Millisecond, zerolog.Nop())

	w.Start(context.Background())
	assert.Eventually(t, func() bool { return svc.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	w.Stop()
}

func TestSweepWorker_StopsWithContext(t *testing.T) {
	svc := &mockSweeper{}
	w := NewSweepWorker(svc, time.Hour, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	w.Start(ctx)
	cancel()

	select {
	case <-w.done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	assert.Equal(t, int32(1), svc.calls.Load())
}

func TestSweepWorker_StopWithoutStart(t *testing.T) {
	w := NewSweepWorker(&mockSweeper{}, time.Second, zerolog.Nop())
	w.Stop()
}
