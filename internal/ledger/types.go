package ledger

import (
	"context"
	"errors"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL uint64 = 1_000_000_000

var ErrInvalidAddress = errors.New("invalid address")

// Signature identifies a submitted transaction.
type Signature string

func (s Signature) String() string {
	return string(s)
}

type ConfirmationStatus string

const (
	StatusPending   ConfirmationStatus = "pending"
	StatusConfirmed ConfirmationStatus = "confirmed"
	StatusFinalized ConfirmationStatus = "finalized"
	StatusUnknown   ConfirmationStatus = "unknown"
)

// IsTerminalSuccess reports whether no further polling is needed.
func (s ConfirmationStatus) IsTerminalSuccess() bool {
	return s == StatusConfirmed || s == StatusFinalized
}

// Client is the subset of a ledger RPC used by the faucet.
type Client interface {
	RequestAirdrop(ctx context.Context, address string, lamports uint64) (Signature, error)
	GetSignatureStatus(ctx context.Context, sig Signature) (ConfirmationStatus, error)
	GetBalance(ctx context.Context, address string) (uint64, error)
}

func LamportsToSOL(lamports uint64) float64 {
	return float64(lamports) / float64(LamportsPerSOL)
}
