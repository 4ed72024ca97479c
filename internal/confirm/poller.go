package confirm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lazorkit/lazordrop/internal/ledger"
)

const (
	DefaultMaxAttempts = 15
	DefaultInterval    = 2000 * time.Millisecond
)

var ErrConfirmationTimeout = errors.New("confirmation timeout")

type Config struct {
	MaxAttempts        int           `mapstructure:"max_attempts" json:"max_attempts,omitempty"`
	Interval           time.Duration `mapstructure:"interval" json:"interval,omitempty"`
	BackoffMultiplier  float64       `mapstructure:"backoff_multiplier" json:"backoff_multiplier,omitempty"`
	BackoffMaxInterval time.Duration `mapstructure:"backoff_max_interval" json:"backoff_max_interval,omitempty"`
	BackoffJitter      float64       `mapstructure:"backoff_jitter" json:"backoff_jitter,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts: DefaultMaxAttempts,
		Interval:    DefaultInterval,
	}
}

// StatusQuerier is the ledger call the poller needs.
type StatusQuerier interface {
	GetSignatureStatus(ctx context.Context, sig ledger.Signature) (ledger.ConfirmationStatus, error)
}

// Recorder receives poll outcomes. A nil Recorder is allowed.
type Recorder interface {
	RecordAttempt(status ledger.ConfirmationStatus, err error)
	RecordOutcome(confirmed bool, attempts int, elapsed time.Duration)
}

type Confirmation struct {
	Signature ledger.Signature
	Status    ledger.ConfirmationStatus
	Attempts  int
}

// Poller waits for a submitted transaction to reach confirmed or finalized.
// It holds no per-call state and is safe for concurrent use.
type Poller struct {
	logger      *logrus.Entry
	querier     StatusQuerier
	backoff     Backoff
	maxAttempts int
	recorder    Recorder
	sleep       func(time.Duration)
}

func NewPoller(logger *logrus.Logger, querier StatusQuerier, cfg Config, recorder Recorder) *Poller {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Poller{
		logger:      logger.WithField("pkg", "confirm.poller"),
		querier:     querier,
		backoff:     NewBackoff(cfg),
		maxAttempts: maxAttempts,
		recorder:    recorder,
		sleep:       time.Sleep,
	}
}

func (p *Poller) MaxAttempts() int {
	return p.maxAttempts
}

// AwaitConfirmation issues at most MaxAttempts status queries for sig and
// returns on the first confirmed or finalized status. A query error counts
// as a non-terminal attempt, the same as a pending status.
//
// The loop itself does not stop on ctx cancellation; ctx is only handed to
// the querier.
func (p *Poller) AwaitConfirmation(ctx context.Context, sig ledger.Signature) (Confirmation, error) {
	start := time.Now()
	var (
		lastStatus = ledger.StatusUnknown
		lastErr    error
	)

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		status, err := p.querier.GetSignatureStatus(ctx, sig)
		if p.recorder != nil {
			p.recorder.RecordAttempt(status, err)
		}

		if err == nil && status.IsTerminalSuccess() {
			p.logger.WithFields(logrus.Fields{
				"signature": sig,
				"status":    status,
				"attempts":  attempt,
			}).Info("transaction confirmed")
			if p.recorder != nil {
				p.recorder.RecordOutcome(true, attempt, time.Since(start))
			}
			return Confirmation{Signature: sig, Status: status, Attempts: attempt}, nil
		}

		if err != nil {
			lastErr = err
			p.logger.WithField("signature", sig).Debugf("status query failed, attempt %d/%d: %v", attempt, p.maxAttempts, err)
		} else {
			lastStatus = status
			p.logger.WithField("signature", sig).Debugf("status %s, attempt %d/%d", status, attempt, p.maxAttempts)
		}

		if attempt < p.maxAttempts {
			p.sleep(p.backoff.Next(attempt))
		}
	}

	if p.recorder != nil {
		p.recorder.RecordOutcome(false, p.maxAttempts, time.Since(start))
	}
	if lastErr != nil {
		return Confirmation{}, fmt.Errorf("%w after %d attempts (last status %s, last query error: %v)",
			ErrConfirmationTimeout, p.maxAttempts, lastStatus, lastErr)
	}
	return Confirmation{}, fmt.Errorf("%w after %d attempts (last status %s)", ErrConfirmationTimeout, p.maxAttempts, lastStatus)
}
