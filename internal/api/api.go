package api

import "time"

const apiVersion = "1.0.0"

type APIResponse[T any] struct {
	Data      T             `json:"data,omitempty"`
	Error     ErrorResponse `json:"error"`
	Status    int           `json:"status,omitempty"`
	Timestamp string        `json:"timestamp"`
	Version   string        `json:"version"`
}

type ErrorResponse struct {
	Message          string `json:"message"`
	DetailedResponse string `json:"details,omitempty"`
}

const (
	MsgInvalidRequest     = "Invalid request body"
	MsgInvalidAddress     = "Invalid wallet address"
	MsgCooldownActive     = "Address is cooling down, try again later"
	MsgSubmissionFailed   = "Airdrop request was rejected by the ledger"
	MsgConfirmTimeout     = "Airdrop was submitted but not confirmed in time"
	MsgBalanceQueryFailed = "Failed to fetch balance"
	MsgTaskNotFound       = "Task not found"
	MsgTaskInProgress     = "Task is still in progress"
	MsgInternalError      = "An internal error occurred"
)

func NewErrorResponseWithMessage(message string, details string) APIResponse[interface{}] {
	return APIResponse[interface{}]{
		Error: ErrorResponse{
			Message:          message,
			DetailedResponse: details,
		},
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   apiVersion,
	}
}

func NewSuccessResponse[T any](code int, data T) APIResponse[T] {
	return APIResponse[T]{
		Status:    code,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   apiVersion,
	}
}

type AirdropRequest struct {
	Address string `json:"address" validate:"required,min=32,max=44"`
}

type AsyncAirdropResponse struct {
	TaskID string `json:"task_id"`
}

type CooldownResponse struct {
	Address          string  `json:"address"`
	RemainingSeconds float64 `json:"remaining_seconds"`
}
