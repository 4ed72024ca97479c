package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/lazorkit/lazordrop/internal/airdrop"
)

const QUEUE_NAME = "lazordrop"

const TypeAirdropRequest = "airdrop:request"

// OutcomeTaskFailed marks a task the worker could not run to completion.
const OutcomeTaskFailed = "task_failed"

// resultRetention keeps completed airdrop results readable by the API.
const resultRetention = time.Hour

var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrTaskInProgress = errors.New("task is still in progress")
)

type AirdropPayload struct {
	RequestID uuid.UUID `json:"request_id"`
	Address   string    `json:"address"`
}

// AirdropTaskResult is written as the task result whether or not the
// airdrop succeeded.
type AirdropTaskResult struct {
	RequestID uuid.UUID       `json:"request_id"`
	Result    *airdrop.Result `json:"result,omitempty"`
	Outcome   string          `json:"outcome"`
	Error     string          `json:"error,omitempty"`
}

func NewAirdropTask(payload AirdropPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}
	return asynq.NewTask(
		TypeAirdropRequest,
		b,
		asynq.Queue(QUEUE_NAME),
		asynq.TaskID(payload.RequestID.String()),
		asynq.MaxRetry(0),
		asynq.Retention(resultRetention),
	), nil
}

func GetTaskResult(inspector *asynq.Inspector, taskID string) ([]byte, error) {
	task, err := inspector.GetTaskInfo(QUEUE_NAME, taskID)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("fail to find task, err: %w", err)
	}

	if task == nil {
		return nil, ErrTaskNotFound
	}
	return resultFromInfo(task)
}

// resultFromInfo reads the result of an inspected task. Archived tasks never
// wrote a result, so one is built from the last handler error.
func resultFromInfo(task *asynq.TaskInfo) ([]byte, error) {
	switch task.State {
	case asynq.TaskStatePending, asynq.TaskStateActive, asynq.TaskStateScheduled,
		asynq.TaskStateRetry, asynq.TaskStateAggregating:
		return nil, ErrTaskInProgress
	case asynq.TaskStateCompleted:
		return task.Result, nil
	case asynq.TaskStateArchived:
		res := AirdropTaskResult{
			Outcome: OutcomeTaskFailed,
			Error:   task.LastErr,
		}
		if id, err := uuid.Parse(task.ID); err == nil {
			res.RequestID = id
		}
		if res.Error == "" {
			res.Error = "task failed"
		}
		b, err := json.Marshal(res)
		if err != nil {
			return nil, fmt.Errorf("json.Marshal: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("task state is invalid: %s", task.State)
	}
}

// ResultReader reads airdrop task results through an asynq inspector.
type ResultReader struct {
	inspector *asynq.Inspector
}

func NewResultReader(inspector *asynq.Inspector) *ResultReader {
	return &ResultReader{inspector: inspector}
}

func (r *ResultReader) GetTaskResult(taskID string) ([]byte, error) {
	return GetTaskResult(r.inspector, taskID)
}
