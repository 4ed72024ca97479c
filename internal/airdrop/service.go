package airdrop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lazorkit/lazordrop/internal/confirm"
	"github.com/lazorkit/lazordrop/internal/cooldown"
	"github.com/lazorkit/lazordrop/internal/ledger"
)

// DevnetWarning is shown before any airdrop action.
const DevnetWarning = "This tool is strictly for development purposes on the Solana Devnet. " +
	"All airdropped SOL tokens have no real-world value."

// reservationTTL bounds how long an address stays held while its airdrop is
// submitted and polled.
const reservationTTL = 2 * time.Minute

type Config struct {
	Lamports uint64        `mapstructure:"lamports" json:"lamports,omitempty"`
	Cooldown time.Duration `mapstructure:"cooldown" json:"cooldown,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Lamports: ledger.LamportsPerSOL,
		Cooldown: cooldown.DefaultDuration,
	}
}

// Observer receives per-operation outcomes. A nil Observer is allowed.
type Observer interface {
	RecordAirdrop(outcome string, duration time.Duration)
	RecordBalanceQuery(ok bool)
}

type Result struct {
	Address       string                    `json:"address"`
	Signature     ledger.Signature          `json:"signature"`
	Lamports      uint64                    `json:"lamports"`
	Status        ledger.ConfirmationStatus `json:"status"`
	Attempts      int                       `json:"attempts"`
	CooldownUntil time.Time                 `json:"cooldown_until"`
	Balance       *Balance                  `json:"balance,omitempty"`
}

type Balance struct {
	Address  string  `json:"address"`
	Lamports uint64  `json:"lamports"`
	SOL      float64 `json:"sol"`
}

type Service struct {
	logger    *logrus.Entry
	client    ledger.Client
	poller    *confirm.Poller
	cooldowns cooldown.Store
	observer  Observer
	cfg       Config
}

func NewService(
	logger *logrus.Logger,
	client ledger.Client,
	poller *confirm.Poller,
	cooldowns cooldown.Store,
	observer Observer,
	cfg Config,
) *Service {
	if cfg.Lamports == 0 {
		cfg.Lamports = ledger.LamportsPerSOL
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = cooldown.DefaultDuration
	}
	return &Service{
		logger:    logger.WithField("pkg", "airdrop.service"),
		client:    client,
		poller:    poller,
		cooldowns: cooldowns,
		observer:  observer,
		cfg:       cfg,
	}
}

// ValidateAddress rejects empty and malformed addresses without touching the
// network.
func ValidateAddress(address string) error {
	_, err := ledger.ParseAddress(address)
	return err
}

// Airdrop requests the configured amount for address and waits for the
// transaction to be confirmed. On success the address enters cooldown.
func (s *Service) Airdrop(ctx context.Context, address string) (*Result, error) {
	start := time.Now()
	res, err := s.airdrop(ctx, address)
	if s.observer != nil {
		s.observer.RecordAirdrop(Outcome(err), time.Since(start))
	}
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"address": address,
			"outcome": Outcome(err),
		}).Warnf("airdrop failed: %v", err)
	}
	return res, err
}

func (s *Service) airdrop(ctx context.Context, address string) (*Result, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}

	// The address is held from submission until confirmation, so a second
	// request for it is refused while the first is still in flight.
	left, ok, err := s.cooldowns.TryStart(ctx, address, reservationTTL)
	if err != nil {
		return nil, fmt.Errorf("s.cooldowns.TryStart: %w", err)
	}
	if !ok {
		return nil, &CooldownError{Remaining: left}
	}
	confirmed := false
	defer func() {
		if confirmed {
			return
		}
		if err := s.cooldowns.Release(context.WithoutCancel(ctx), address); err != nil {
			s.logger.WithField("address", address).Errorf("failed to release cooldown: %v", err)
		}
	}()

	sig, err := s.client.RequestAirdrop(ctx, address, s.cfg.Lamports)
	if err != nil {
		if errors.Is(err, ErrInvalidAddress) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrSubmission, err)
	}

	s.logger.WithFields(logrus.Fields{
		"address":   address,
		"signature": sig,
		"lamports":  s.cfg.Lamports,
	}).Info("airdrop submitted, waiting for confirmation")

	confirmation, err := s.poller.AwaitConfirmation(ctx, sig)
	if err != nil {
		return nil, err
	}
	confirmed = true

	res := &Result{
		Address:       address,
		Signature:     sig,
		Lamports:      s.cfg.Lamports,
		Status:        confirmation.Status,
		Attempts:      confirmation.Attempts,
		CooldownUntil: time.Now().Add(s.cfg.Cooldown),
	}

	if err := s.cooldowns.Start(ctx, address, s.cfg.Cooldown); err != nil {
		s.logger.WithField("address", address).Errorf("failed to start cooldown: %v", err)
	}

	balance, err := s.Balance(ctx, address)
	if err != nil {
		s.logger.WithField("address", address).Warnf("post-airdrop balance refresh failed: %v", err)
	} else {
		res.Balance = balance
	}

	s.logger.WithFields(logrus.Fields{
		"address":   address,
		"signature": sig,
		"sol":       ledger.LamportsToSOL(s.cfg.Lamports),
	}).Info("airdrop confirmed")
	return res, nil
}

// Balance is a single query with no retry.
func (s *Service) Balance(ctx context.Context, address string) (*Balance, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}

	lamports, err := s.client.GetBalance(ctx, address)
	if s.observer != nil {
		s.observer.RecordBalanceQuery(err == nil)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBalanceQuery, err)
	}
	return &Balance{
		Address:  address,
		Lamports: lamports,
		SOL:      ledger.LamportsToSOL(lamports),
	}, nil
}

// Cooldown returns how long address must wait before its next airdrop.
func (s *Service) Cooldown(ctx context.Context, address string) (time.Duration, error) {
	if err := ValidateAddress(address); err != nil {
		return 0, err
	}
	left, err := s.cooldowns.Remaining(ctx, address)
	if err != nil {
		return 0, fmt.Errorf("s.cooldowns.Remaining: %w", err)
	}
	return left, nil
}
