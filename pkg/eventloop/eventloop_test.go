package eventloop

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoRunsSerially(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := New(16)
	go l.Run(ctx)

	var (
		wg      sync.WaitGroup
		active  int
		maxSeen int
		total   int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.Do(ctx, func(context.Context) error {
				// no lock: the loop guarantees exclusive access
				active++
				if active > maxSeen {
					maxSeen = active
				}
				total++
				active--
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 50, total)
}

func TestDoReturnsTaskError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := New(1)
	go l.Run(ctx)

	errBoom := errors.New("boom")
	err := l.Do(ctx, func(context.Context) error { return errBoom })
	assert.ErrorIs(t, err, errBoom)
}

func TestDoRecoversPanic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := New(1)
	go l.Run(ctx)

	err := l.Do(ctx, func(context.Context) error { panic("oops") })
	require.Error(t, err)

	// loop keeps working after a panic
	assert.NoError(t, l.Do(ctx, func(context.Context) error { return nil }))
}

func TestDoAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	l := New(0)
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	err := l.Do(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrStopped)
}
