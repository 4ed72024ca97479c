package airdrop

import (
	"errors"
	"fmt"
	"time"

	"github.com/lazorkit/lazordrop/internal/confirm"
	"github.com/lazorkit/lazordrop/internal/ledger"
)

var (
	ErrInvalidAddress      = ledger.ErrInvalidAddress
	ErrSubmission          = errors.New("airdrop submission failed")
	ErrConfirmationTimeout = confirm.ErrConfirmationTimeout
	ErrBalanceQuery        = errors.New("balance query failed")
	ErrCooldownActive      = errors.New("cooldown active")
)

// CooldownError is returned while an address is still cooling down.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: retry in %s", ErrCooldownActive, e.Remaining.Round(time.Second))
}

func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldownActive
}

// Outcome names an airdrop result for logs and metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, ErrCooldownActive):
		return "cooldown"
	case errors.Is(err, ErrSubmission):
		return "submission_error"
	case errors.Is(err, ErrConfirmationTimeout):
		return "confirmation_timeout"
	case errors.Is(err, ErrBalanceQuery):
		return "balance_error"
	default:
		return "error"
	}
}
