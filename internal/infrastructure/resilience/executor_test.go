package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		MaxRetries:      3,
		BaseDelay:       1 * time.Millisecond,
		MaxDelay:        2 * time.Millisecond,
		ExponentialBase: 2,
		Jitter:          false,
		BreakerEnabled:  false,
	}
}

func TestExecuteRetriesUntilSuccess(t *testing.T) {
	exec := NewExecutor(testConfig())

	attempts := 0
	errTemp := errors.New("temporary")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTemp
		}
		return nil
	}, func(err error) bool {
		return errors.Is(err, errTemp)
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if exec.AttemptCount() != 3 {
		t.Fatalf("AttemptCount() = %d, want 3", exec.AttemptCount())
	}
}

func TestExecuteDoesNotRetryPermanentFailure(t *testing.T) {
	exec := NewExecutor(testConfig())

	attempts := 0
	errPermanent := errors.New("permanent")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errPermanent
	}, func(error) bool { return false })
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestExecuteExhaustsRetriesAndReturnsLastError(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 2
	exec := NewExecutor(cfg)

	attempts := 0
	errTemp := errors.New("still failing")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errTemp
	}, func(error) bool { return true })
	if !errors.Is(err, errTemp) {
		t.Fatalf("expected last error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected max_retries+1 = 3 attempts, got %d", attempts)
	}
}

func TestExecuteSucceedsWithinRetryLimit(t *testing.T) {
	for numFailures := 0; numFailures <= 3; numFailures++ {
		cfg := testConfig()
		exec := NewExecutor(cfg)

		calls := 0
		err := exec.Execute(context.Background(), "op", func(context.Context) error {
			calls++
			if calls <= numFailures {
				return errors.New("flaky")
			}
			return nil
		}, func(error) bool { return true })
		if err != nil {
			t.Fatalf("numFailures=%d: expected success, got %v", numFailures, err)
		}
		if calls != numFailures+1 {
			t.Fatalf("numFailures=%d: expected %d calls, got %d", numFailures, numFailures+1, calls)
		}
	}
}

func TestDelayFollowsExponentialBackoffFormula(t *testing.T) {
	cfg := Config{
		MaxRetries:      5,
		BaseDelay:       100 * time.Millisecond,
		MaxDelay:        1 * time.Second,
		ExponentialBase: 2,
	}

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, 1 * time.Second}, // capped at max delay
		{5, 1 * time.Second},
	}
	for _, tc := range cases {
		if got := cfg.Delay(tc.attempt); got != tc.want {
			t.Errorf("Delay(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestLastDelayIsObservable(t *testing.T) {
	cfg := testConfig()
	cfg.BaseDelay = 1 * time.Millisecond
	cfg.MaxDelay = 10 * time.Millisecond
	exec := NewExecutor(cfg)

	attempts := 0
	_ = exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 2 {
			return errors.New("flaky")
		}
		return nil
	}, func(error) bool { return true })

	if exec.LastDelay() != 1*time.Millisecond {
		t.Fatalf("LastDelay() = %v, want 1ms", exec.LastDelay())
	}
}

func TestJitterScalesDelayWithinBounds(t *testing.T) {
	cfg := testConfig()
	cfg.BaseDelay = 100 * time.Millisecond
	cfg.MaxDelay = 100 * time.Millisecond
	cfg.Jitter = true
	cfg.MaxRetries = 1
	exec := NewExecutor(cfg)

	attempts := 0
	_ = exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 2 {
			return errors.New("flaky")
		}
		return nil
	}, func(error) bool { return true })

	got := exec.LastDelay()
	if got < 50*time.Millisecond || got > 150*time.Millisecond {
		t.Fatalf("jittered delay %v outside [0.5, 1.5) band of 100ms", got)
	}
}

func TestExecuteStopsWhenContextCancelled(t *testing.T) {
	exec := NewExecutor(testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := exec.Execute(ctx, "op", func(context.Context) error {
		t.Fatal("operation must not run on cancelled context")
		return nil
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
