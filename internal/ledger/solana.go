package ledger

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

const defaultTimeout = 30 * time.Second

type SolanaConfig struct {
	URL        string
	Commitment rpc.CommitmentType
	RetryMax   int
	// RetryWait is the shortest wait between read retries. Zero keeps the
	// transport default.
	RetryWait time.Duration
}

// Solana talks to a Solana JSON-RPC node. Reads go through a retrying
// transport; airdrop submission does not, so a submission is never sent twice.
type Solana struct {
	reader     *rpc.Client
	writer     *rpc.Client
	commitment rpc.CommitmentType
}

func NewSolana(cfg SolanaConfig, logger *logrus.Logger) *Solana {
	commitment := cfg.Commitment
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = defaultTimeout
	retryClient.RetryMax = cfg.RetryMax
	if cfg.RetryWait > 0 {
		retryClient.RetryWaitMin = cfg.RetryWait
		retryClient.RetryWaitMax = 30 * cfg.RetryWait
	}
	if logger != nil {
		retryClient.Logger = logger.WithField("pkg", "ledger.solana")
	} else {
		retryClient.Logger = nil
	}

	reader := rpc.NewWithCustomRPCClient(jsonrpc.NewClientWithOpts(cfg.URL, &jsonrpc.RPCClientOpts{
		HTTPClient: retryClient.StandardClient(),
	}))
	writer := rpc.NewWithCustomRPCClient(jsonrpc.NewClientWithOpts(cfg.URL, &jsonrpc.RPCClientOpts{
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}))

	return &Solana{
		reader:     reader,
		writer:     writer,
		commitment: commitment,
	}
}

// ParseAddress decodes a base58 Solana public key.
func ParseAddress(address string) (solana.PublicKey, error) {
	if address == "" {
		return solana.PublicKey{}, fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	pk, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return pk, nil
}

func (s *Solana) RequestAirdrop(ctx context.Context, address string, lamports uint64) (Signature, error) {
	pk, err := ParseAddress(address)
	if err != nil {
		return "", err
	}

	sig, err := s.writer.RequestAirdrop(ctx, pk, lamports, s.commitment)
	if err != nil {
		return "", fmt.Errorf("rpc.RequestAirdrop: %w", err)
	}
	return Signature(sig.String()), nil
}

func (s *Solana) GetSignatureStatus(ctx context.Context, sig Signature) (ConfirmationStatus, error) {
	if ctx.Err() != nil {
		return StatusUnknown, ctx.Err()
	}

	parsed, err := solana.SignatureFromBase58(sig.String())
	if err != nil {
		return StatusUnknown, fmt.Errorf("solana.SignatureFromBase58: %w", err)
	}

	res, err := s.reader.GetSignatureStatuses(ctx, true, parsed)
	if err != nil {
		return StatusUnknown, fmt.Errorf("rpc.GetSignatureStatuses: %w", err)
	}
	if res == nil || len(res.Value) == 0 {
		return StatusUnknown, nil
	}
	return statusFromResult(res.Value[0]), nil
}

func (s *Solana) GetBalance(ctx context.Context, address string) (uint64, error) {
	pk, err := ParseAddress(address)
	if err != nil {
		return 0, err
	}

	res, err := s.reader.GetBalance(ctx, pk, s.commitment)
	if err != nil {
		return 0, fmt.Errorf("rpc.GetBalance: %w", err)
	}
	if res == nil {
		return 0, fmt.Errorf("rpc.GetBalance: empty response")
	}
	return res.Value, nil
}

// statusFromResult maps a node status entry. A failed transaction maps to
// unknown rather than an error so the caller keeps polling until its budget
// runs out.
func statusFromResult(st *rpc.SignatureStatusesResult) ConfirmationStatus {
	if st == nil || st.Err != nil {
		return StatusUnknown
	}
	switch st.ConfirmationStatus {
	case rpc.ConfirmationStatusFinalized:
		return StatusFinalized
	case rpc.ConfirmationStatusConfirmed:
		return StatusConfirmed
	case rpc.ConfirmationStatusProcessed:
		return StatusPending
	default:
		return StatusUnknown
	}
}

// Ping checks that the node reports itself healthy.
func (s *Solana) Ping(ctx context.Context) error {
	if _, err := s.reader.GetHealth(ctx); err != nil {
		return fmt.Errorf("failed to ping: %w", err)
	}
	return nil
}
