package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidSpec(t *testing.T) {
	_, err := New(context.Background(), "every morning", func(context.Context) error { return nil }, nil)
	assert.Error(t, err)
}

func TestNext(t *testing.T) {
	s, err := New(context.Background(), "0 7 * * *", func(context.Context) error { return nil }, nil)
	require.NoError(t, err)

	from := time.Date(2025, 9, 1, 8, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2025, 9, 2, 7, 0, 0, 0, time.Local), s.Next(from))
}

func TestOverlappingRunIsSkipped(t *testing.T) {
	var runs atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	s, err := New(context.Background(), "@every 1h", func(context.Context) error {
		runs.Add(1)
		close(started)
		<-release
		return nil
	}, nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		s.job.Run()
		close(done)
	}()
	<-started

	s.job.Run()
	close(release)
	<-done

	assert.EqualValues(t, 1, runs.Load())
}

func TestFailingRunIsRecovered(t *testing.T) {
	calls := 0
	s, err := New(context.Background(), "@daily", func(context.Context) error {
		calls++
		if calls == 1 {
			panic("boom")
		}
		return errors.New("portal down")
	}, nil)
	require.NoError(t, err)

	assert.NotPanics(t, s.job.Run)
	assert.NotPanics(t, s.job.Run)
	assert.Equal(t, 2, calls)
}

func TestRun_StopsOnCancel(t *testing.T) {
	var runs atomic.Int32
	s, err := New(context.Background(), "@every 1h", func(context.Context) error {
		runs.Add(1)
		return nil
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		s.Run(ctx, true)
		close(finished)
	}()

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
