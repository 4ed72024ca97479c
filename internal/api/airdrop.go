package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lazorkit/lazordrop/internal/airdrop"
	"github.com/lazorkit/lazordrop/internal/tasks"
)

func (s *Server) RequestAirdrop(c echo.Context) error {
	var req AirdropRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponseWithMessage(MsgInvalidRequest, err.Error()))
	}

	res, err := s.svc.Airdrop(c.Request().Context(), req.Address)
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, NewSuccessResponse(http.StatusOK, res))
}

func (s *Server) RequestAirdropAsync(c echo.Context) error {
	if s.queue == nil {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponseWithMessage("Task queue is not configured", ""))
	}

	var req AirdropRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponseWithMessage(MsgInvalidRequest, err.Error()))
	}
	ctx := c.Request().Context()
	left, err := s.svc.Cooldown(ctx, req.Address)
	if err != nil {
		return s.errorResponse(c, err)
	}
	if left > 0 {
		return s.errorResponse(c, &airdrop.CooldownError{Remaining: left})
	}

	task, err := tasks.NewAirdropTask(tasks.AirdropPayload{
		RequestID: uuid.New(),
		Address:   req.Address,
	})
	if err != nil {
		return s.errorResponse(c, err)
	}

	info, err := s.queue.EnqueueContext(ctx, task)
	if err != nil {
		s.logger.Errorf("failed to enqueue airdrop task: %v", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponseWithMessage(MsgInternalError, ""))
	}
	return c.JSON(http.StatusAccepted, NewSuccessResponse(http.StatusAccepted, AsyncAirdropResponse{TaskID: info.ID}))
}

func (s *Server) GetAirdropTask(c echo.Context) error {
	if s.inspector == nil {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponseWithMessage("Task queue is not configured", ""))
	}

	raw, err := s.inspector.GetTaskResult(c.Param("taskId"))
	switch {
	case errors.Is(err, tasks.ErrTaskNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponseWithMessage(MsgTaskNotFound, ""))
	case errors.Is(err, tasks.ErrTaskInProgress):
		return c.JSON(http.StatusAccepted, NewErrorResponseWithMessage(MsgTaskInProgress, ""))
	case err != nil:
		s.logger.Errorf("failed to read task result: %v", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponseWithMessage(MsgInternalError, ""))
	}

	var result tasks.AirdropTaskResult
	if err := json.Unmarshal(raw, &result); err != nil {
		s.logger.Errorf("failed to decode task result: %v", err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponseWithMessage(MsgInternalError, ""))
	}
	return c.JSON(http.StatusOK, NewSuccessResponse(http.StatusOK, result))
}

func (s *Server) GetBalance(c echo.Context) error {
	b, err := s.svc.Balance(c.Request().Context(), c.Param("address"))
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, NewSuccessResponse(http.StatusOK, b))
}

func (s *Server) GetCooldown(c echo.Context) error {
	address := c.Param("address")
	left, err := s.svc.Cooldown(c.Request().Context(), address)
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, NewSuccessResponse(http.StatusOK, CooldownResponse{
		Address:          address,
		RemainingSeconds: left.Seconds(),
	}))
}

func (s *Server) bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

func (s *Server) errorResponse(c echo.Context, err error) error {
	status, msg := statusForError(err)
	if status >= http.StatusInternalServerError && status != http.StatusGatewayTimeout && status != http.StatusBadGateway {
		s.logger.Errorf("request failed: %v", err)
		return c.JSON(status, NewErrorResponseWithMessage(msg, ""))
	}

	var cdErr *airdrop.CooldownError
	if errors.As(err, &cdErr) {
		c.Response().Header().Set("Retry-After", retryAfter(cdErr))
	}
	return c.JSON(status, NewErrorResponseWithMessage(msg, err.Error()))
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, airdrop.ErrInvalidAddress):
		return http.StatusBadRequest, MsgInvalidAddress
	case errors.Is(err, airdrop.ErrCooldownActive):
		return http.StatusTooManyRequests, MsgCooldownActive
	case errors.Is(err, airdrop.ErrConfirmationTimeout):
		return http.StatusGatewayTimeout, MsgConfirmTimeout
	case errors.Is(err, airdrop.ErrSubmission):
		return http.StatusBadGateway, MsgSubmissionFailed
	case errors.Is(err, airdrop.ErrBalanceQuery):
		return http.StatusBadGateway, MsgBalanceQueryFailed
	default:
		return http.StatusInternalServerError, MsgInternalError
	}
}

func retryAfter(e *airdrop.CooldownError) string {
	secs := int(e.Remaining.Seconds())
	if e.Remaining > 0 && float64(secs) < e.Remaining.Seconds() {
		secs++
	}
	return strconv.Itoa(secs)
}
