package tasks

import (
	"encoding/json"
	"time"

	"leadline/models"

	"github.com/hibiken/asynq"
)

const (
	TypeCallDispatch = "call:dispatch"
	TypeSheetPoll    = "sheet:poll"
)

// dispatchUniqueTTL keeps a duplicate enqueue of the same lead from placing
// a second call while the first is still queued.
const dispatchUniqueTTL = 30 * time.Minute

// NewCallDispatchTask builds the task that launches one outbound call.
func NewCallDispatchTask(job models.Job) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(job)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeCallDispatch, b)
	opts := []asynq.Option{
		asynq.Unique(dispatchUniqueTTL),
		asynq.MaxRetry(0),
		asynq.Timeout(30 * time.Second),
	}
	return task, opts, nil
}

// ParseCallDispatchTask decodes the job carried by a dispatch task.
func ParseCallDispatchTask(task *asynq.Task) (models.Job, error) {
	var job models.Job
	err := json.Unmarshal(task.Payload(), &job)
	return job, err
}

// NewSheetPollTask builds the periodic lead sheet poll.
func NewSheetPollTask() *asynq.Task {
	return asynq.NewTask(TypeSheetPoll, nil)
}
