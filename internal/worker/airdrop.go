package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/lazorkit/lazordrop/internal/airdrop"
	"github.com/lazorkit/lazordrop/internal/tasks"
)

type Airdropper interface {
	Airdrop(ctx context.Context, address string) (*airdrop.Result, error)
}

// AirdropHandler runs queued airdrop requests. Airdrop failures are reported
// through the task result rather than asynq retries; every failure kind is
// terminal for the request.
type AirdropHandler struct {
	logger  *logrus.Entry
	svc     Airdropper
	timeout time.Duration
}

// NewAirdropHandler returns a handler; a zero timeout leaves the task
// context untouched.
func NewAirdropHandler(logger *logrus.Logger, svc Airdropper, timeout time.Duration) *AirdropHandler {
	return &AirdropHandler{
		logger:  logger.WithField("pkg", "worker.airdrop"),
		svc:     svc,
		timeout: timeout,
	}
}

func (h *AirdropHandler) HandleAirdropRequest(ctx context.Context, t *asynq.Task) error {
	var payload tasks.AirdropPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": payload.RequestID,
		"address":    payload.Address,
	}).Info("processing airdrop request")

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	res, err := h.svc.Airdrop(ctx, payload.Address)
	out := tasks.AirdropTaskResult{
		RequestID: payload.RequestID,
		Result:    res,
		Outcome:   airdrop.Outcome(err),
	}
	if err != nil {
		out.Error = err.Error()
	}

	b, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("json.Marshal failed: %v: %w", err, asynq.SkipRetry)
	}
	if w := t.ResultWriter(); w != nil {
		if _, err := w.Write(b); err != nil {
			return fmt.Errorf("failed to write task result: %w", err)
		}
	}
	return nil
}
