package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/tkp/internal/common"
	"github.com/joseph-ayodele/tkp/internal/quote"
)

type assemblerFunc func(ctx context.Context, prompt string) (quote.Outcome, error)

func (f assemblerFunc) Assemble(ctx context.Context, prompt string) (quote.Outcome, error) {
	return f(ctx, prompt)
}

func TestRunner_Run(t *testing.T) {
	r := NewRunner(assemblerFunc(func(ctx context.Context, prompt string) (quote.Outcome, error) {
		return quote.Outcome{NoResults: &quote.NoResults{Query: prompt}}, nil
	}), nil)
	defer r.Shutdown(context.Background())

	out, err := r.Run(context.Background(), "кабель")
	require.NoError(t, err)
	require.NotNil(t, out.NoResults)
	assert.Equal(t, "кабель", out.NoResults.Query)
}

func TestRunner_CancelInterruptsJob(t *testing.T) {
	started := make(chan struct{})
	r := NewRunner(assemblerFunc(func(ctx context.Context, _ string) (quote.Outcome, error) {
		close(started)
		<-ctx.Done()
		return quote.Outcome{}, ctx.Err()
	}), nil)
	defer r.Shutdown(context.Background())

	j, err := r.Submit(context.Background(), "кабель")
	require.NoError(t, err)
	<-started
	j.Cancel()

	select {
	case <-j.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("job did not finish after cancel")
	}
	_, err = j.Wait(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_WaitContextCancelsJob(t *testing.T) {
	r := NewRunner(assemblerFunc(func(ctx context.Context, _ string) (quote.Outcome, error) {
		<-ctx.Done()
		return quote.Outcome{}, ctx.Err()
	}), nil)
	defer r.Shutdown(context.Background())

	j, err := r.Submit(context.Background(), "кабель")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = j.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_JobTimeout(t *testing.T) {
	r := NewRunner(assemblerFunc(func(ctx context.Context, _ string) (quote.Outcome, error) {
		<-ctx.Done()
		return quote.Outcome{}, ctx.Err()
	}), nil, WithJobTimeout(10*time.Millisecond))
	defer r.Shutdown(context.Background())

	_, err := r.Run(context.Background(), "кабель")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunner_BoundedConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	r := NewRunner(assemblerFunc(func(ctx context.Context, _ string) (quote.Outcome, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return quote.Outcome{}, nil
	}), nil, WithWorkers(2), WithQueueSize(16))

	var jobs []*Job
	for i := 0; i < 8; i++ {
		j, err := r.Submit(context.Background(), "p")
		require.NoError(t, err)
		jobs = append(jobs, j)
	}
	for _, j := range jobs {
		_, err := j.Wait(context.Background())
		require.NoError(t, err)
	}
	r.Shutdown(context.Background())

	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunner_SubmitAfterShutdown(t *testing.T) {
	r := NewRunner(assemblerFunc(func(context.Context, string) (quote.Outcome, error) {
		return quote.Outcome{}, nil
	}), nil)
	r.Shutdown(context.Background())

	_, err := r.Submit(context.Background(), "p")
	assert.True(t, errors.Is(err, common.ErrInternal))
}

func TestRunner_FullQueueDoesNotBlockShutdown(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	r := NewRunner(assemblerFunc(func(ctx context.Context, _ string) (quote.Outcome, error) {
		started <- struct{}{}
		<-release
		return quote.Outcome{}, nil
	}), nil, WithWorkers(1), WithQueueSize(1))

	_, err := r.Submit(context.Background(), "first")
	require.NoError(t, err)
	<-started
	_, err = r.Submit(context.Background(), "queued")
	require.NoError(t, err)

	// two submitters wait on the full queue at the same time
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := r.Submit(context.Background(), "blocked")
			errs <- err
		}()
	}

	shutdownDone := make(chan struct{})
	time.Sleep(20 * time.Millisecond)
	go func() {
		r.Shutdown(context.Background())
		close(shutdownDone)
	}()

	for i := 0; i < 2; i++ {
		select {
		case err := <-errs:
			assert.ErrorIs(t, err, ErrClosed)
		case <-time.After(2 * time.Second):
			t.Fatal("blocked submitter was not released by shutdown")
		}
	}

	close(release)
	select {
	case <-shutdownDone:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not drain")
	}
}

func TestRunner_RequestIDBecomesJobID(t *testing.T) {
	var seen string
	r := NewRunner(assemblerFunc(func(ctx context.Context, _ string) (quote.Outcome, error) {
		seen = common.RequestIDFromContext(ctx)
		return quote.Outcome{}, nil
	}), nil)
	defer r.Shutdown(context.Background())

	j, err := r.Submit(common.WithRequestID(context.Background(), "req-9"), "p")
	require.NoError(t, err)
	_, _ = j.Wait(context.Background())
	assert.Equal(t, "req-9", j.ID)
	assert.Equal(t, "req-9", seen)
}
