package confirm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazorkit/lazordrop/internal/ledger"
)

type stubQuerier struct {
	mu       sync.Mutex
	script   map[ledger.Signature][]ledger.ConfirmationStatus
	errs     map[ledger.Signature][]error
	calls    map[ledger.Signature]int
	fallback ledger.ConfirmationStatus
}

func newStubQuerier() *stubQuerier {
	return &stubQuerier{
		script:   map[ledger.Signature][]ledger.ConfirmationStatus{},
		errs:     map[ledger.Signature][]error{},
		calls:    map[ledger.Signature]int{},
		fallback: ledger.StatusPending,
	}
}

func (s *stubQuerier) GetSignatureStatus(_ context.Context, sig ledger.Signature) (ledger.ConfirmationStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.calls[sig]
	s.calls[sig]++

	if errs := s.errs[sig]; i < len(errs) && errs[i] != nil {
		return ledger.StatusUnknown, errs[i]
	}
	if statuses := s.script[sig]; i < len(statuses) {
		return statuses[i], nil
	}
	return s.fallback, nil
}

func (s *stubQuerier) Calls(sig ledger.Signature) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[sig]
}

type sleepLog struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (l *sleepLog) sleep(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.delays = append(l.delays, d)
}

func newTestPoller(q StatusQuerier, cfg Config) (*Poller, *sleepLog) {
	p := NewPoller(logrus.New(), q, cfg, nil)
	log := &sleepLog{}
	p.sleep = log.sleep
	return p, log
}

func confirmedOn(k int) []ledger.ConfirmationStatus {
	out := make([]ledger.ConfirmationStatus, k)
	for i := 0; i < k-1; i++ {
		out[i] = ledger.StatusPending
	}
	out[k-1] = ledger.StatusConfirmed
	return out
}

func TestAwaitConfirmation_ConfirmedOnAttemptK(t *testing.T) {
	for k := 1; k <= DefaultMaxAttempts; k++ {
		q := newStubQuerier()
		q.script["sig"] = confirmedOn(k)
		p, sleeps := newTestPoller(q, DefaultConfig())

		res, err := p.AwaitConfirmation(context.Background(), "sig")
		require.NoError(t, err, "k=%d", k)
		require.Equal(t, k, res.Attempts)
		require.Equal(t, ledger.StatusConfirmed, res.Status)
		require.Equal(t, k, q.Calls("sig"), "k=%d", k)
		require.Len(t, sleeps.delays, k-1)
	}
}

func TestAwaitConfirmation_TimeoutAfterMaxAttempts(t *testing.T) {
	q := newStubQuerier()
	p, sleeps := newTestPoller(q, DefaultConfig())

	_, err := p.AwaitConfirmation(context.Background(), "sig")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrConfirmationTimeout))
	require.Equal(t, DefaultMaxAttempts, q.Calls("sig"))
	require.Len(t, sleeps.delays, DefaultMaxAttempts-1)
	for _, d := range sleeps.delays {
		require.Equal(t, DefaultInterval, d)
	}
}

func TestAwaitConfirmation_FinalizedFirst(t *testing.T) {
	q := newStubQuerier()
	q.script["sig"] = []ledger.ConfirmationStatus{ledger.StatusFinalized}
	p, sleeps := newTestPoller(q, DefaultConfig())

	res, err := p.AwaitConfirmation(context.Background(), "sig")
	require.NoError(t, err)
	require.Equal(t, ledger.StatusFinalized, res.Status)
	require.Equal(t, 1, q.Calls("sig"))
	require.Empty(t, sleeps.delays)
}

func TestAwaitConfirmation_QueryErrorsCountAsPending(t *testing.T) {
	q := newStubQuerier()
	unavailable := errors.New("unavailable")
	q.errs["sig"] = []error{unavailable, unavailable, nil}
	q.script["sig"] = []ledger.ConfirmationStatus{"", "", ledger.StatusConfirmed}
	p, _ := newTestPoller(q, DefaultConfig())

	res, err := p.AwaitConfirmation(context.Background(), "sig")
	require.NoError(t, err)
	require.Equal(t, 3, res.Attempts)
	require.Equal(t, 3, q.Calls("sig"))
}

func TestAwaitConfirmation_PersistentQueryErrorTimesOut(t *testing.T) {
	q := newStubQuerier()
	errs := make([]error, DefaultMaxAttempts)
	for i := range errs {
		errs[i] = errors.New("connection refused")
	}
	q.errs["sig"] = errs
	p, _ := newTestPoller(q, DefaultConfig())

	_, err := p.AwaitConfirmation(context.Background(), "sig")
	require.True(t, errors.Is(err, ErrConfirmationTimeout))
	assert.Contains(t, err.Error(), "connection refused")
	require.Equal(t, DefaultMaxAttempts, q.Calls("sig"))
}

func TestAwaitConfirmation_ProcessedIsNotTerminal(t *testing.T) {
	q := newStubQuerier()
	q.script["sig"] = []ledger.ConfirmationStatus{ledger.StatusPending, ledger.StatusUnknown, ledger.StatusFinalized}
	p, _ := newTestPoller(q, Config{MaxAttempts: 5, Interval: time.Millisecond})

	res, err := p.AwaitConfirmation(context.Background(), "sig")
	require.NoError(t, err)
	require.Equal(t, 3, res.Attempts)
}

func TestAwaitConfirmation_CustomBudget(t *testing.T) {
	q := newStubQuerier()
	p, _ := newTestPoller(q, Config{MaxAttempts: 3, Interval: time.Millisecond})

	_, err := p.AwaitConfirmation(context.Background(), "sig")
	require.True(t, errors.Is(err, ErrConfirmationTimeout))
	require.Equal(t, 3, q.Calls("sig"))
}

func TestAwaitConfirmation_IndependentConcurrentCalls(t *testing.T) {
	q := newStubQuerier()
	q.script["a"] = confirmedOn(4)
	q.script["b"] = confirmedOn(9)

	p := NewPoller(logrus.New(), q, Config{MaxAttempts: DefaultMaxAttempts, Interval: time.Millisecond}, nil)

	var wg sync.WaitGroup
	results := make(map[ledger.Signature]Confirmation)
	var mu sync.Mutex
	for _, sig := range []ledger.Signature{"a", "b"} {
		sig := sig
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := p.AwaitConfirmation(context.Background(), sig)
			assert.NoError(t, err)
			mu.Lock()
			results[sig] = res
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Equal(t, 4, results["a"].Attempts)
	require.Equal(t, 9, results["b"].Attempts)
	require.Equal(t, 4, q.Calls("a"))
	require.Equal(t, 9, q.Calls("b"))
}

type countingRecorder struct {
	attempts  int
	confirmed bool
	total     int
}

func (r *countingRecorder) RecordAttempt(ledger.ConfirmationStatus, error) { r.attempts++ }

func (r *countingRecorder) RecordOutcome(confirmed bool, attempts int, _ time.Duration) {
	r.confirmed = confirmed
	r.total = attempts
}

func TestAwaitConfirmation_Recorder(t *testing.T) {
	q := newStubQuerier()
	q.script["sig"] = confirmedOn(2)
	rec := &countingRecorder{}
	p := NewPoller(logrus.New(), q, Config{MaxAttempts: 5, Interval: time.Millisecond}, rec)
	p.sleep = func(time.Duration) {}

	_, err := p.AwaitConfirmation(context.Background(), "sig")
	require.NoError(t, err)
	require.Equal(t, 2, rec.attempts)
	require.True(t, rec.confirmed)
	require.Equal(t, 2, rec.total)
}

func TestNewPoller_Defaults(t *testing.T) {
	p := NewPoller(logrus.New(), newStubQuerier(), Config{}, nil)
	require.Equal(t, DefaultMaxAttempts, p.MaxAttempts())
	require.Equal(t, DefaultInterval, p.backoff.Next(1))
}

func TestAwaitConfirmation_LogsCarryPackageField(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	q := newStubQuerier()
	q.script["sig"] = confirmedOn(2)
	p := NewPoller(logger, q, DefaultConfig(), nil)
	p.sleep = func(time.Duration) {}

	_, err := p.AwaitConfirmation(context.Background(), "sig")
	require.NoError(t, err)

	entries := hook.AllEntries()
	require.NotEmpty(t, entries)
	for _, e := range entries {
		assert.Equal(t, "confirm.poller", e.Data["pkg"], e.Message)
	}
}
