package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"wardrobeapi/errs"
	"wardrobeapi/inference"
	"wardrobeapi/wardrobe"

	"github.com/hibiken/asynq"
)

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskInspector is satisfied by *asynq.Inspector.
type TaskInspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
}

type TaskStatus struct {
	TaskID string           `json:"task_id"`
	State  string           `json:"state"`
	Intake *wardrobe.Intake `json:"intake,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// Dispatcher sends uploads to the worker and applies finished results to
// the owner's wardrobe exactly once. Like inline classification, a user has
// at most one queued upload until its result is collected or it fails; an
// uncollected task stops blocking once its result retention has passed.
type Dispatcher struct {
	client    Enqueuer
	inspector TaskInspector
	registry  *wardrobe.Registry
	threshold float64
	observer  inference.Observer
	now       func() time.Time

	mu      sync.Mutex
	owners  map[string]string
	applied map[string]wardrobe.Intake
	queued  map[string]queuedUpload
}

type queuedUpload struct {
	taskID string
	since  time.Time
}

func NewDispatcher(client Enqueuer, inspector TaskInspector, registry *wardrobe.Registry, threshold float64) *Dispatcher {
	return &Dispatcher{
		client:    client,
		inspector: inspector,
		registry:  registry,
		threshold: threshold,
		now:       time.Now,
		owners:    map[string]string{},
		applied:   map[string]wardrobe.Intake{},
		queued:    map[string]queuedUpload{},
	}
}

func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

func (d *Dispatcher) WithObserver(observer inference.Observer) *Dispatcher {
	d.observer = observer
	return d
}

func (d *Dispatcher) observe(outcome string, took time.Duration) {
	if d.observer != nil {
		d.observer.ObserveUpload(outcome, took)
	}
}

func (d *Dispatcher) Enqueue(userID string, upload inference.Upload) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if q, busy := d.queued[userID]; busy && d.now().Sub(q.since) < resultRetention {
		d.observe(inference.OutcomeRejected, 0)
		return "", errs.ErrUploadInProgress
	}

	task, err := NewInferenceTask(userID, upload, d.threshold)
	if err != nil {
		return "", err
	}
	info, err := d.client.Enqueue(task,
		asynq.Queue(QueueInference),
		asynq.MaxRetry(3),
		asynq.Retention(resultRetention),
	)
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", TypeInferenceClassify, err)
	}
	d.owners[info.ID] = userID
	d.queued[userID] = queuedUpload{taskID: info.ID, since: d.now()}
	return info.ID, nil
}

// finish releases the user's queued slot held by taskID. Must be called with
// d.mu held.
func (d *Dispatcher) finish(userID, taskID, outcome string, at time.Time) {
	q, ok := d.queued[userID]
	if !ok || q.taskID != taskID {
		return
	}
	delete(d.queued, userID)
	if at.IsZero() {
		at = d.now()
	}
	d.observe(outcome, at.Sub(q.since))
}

// Collect reports the task state and, once it completed, applies its result
// to the user's store. Later calls return the applied intake again.
func (d *Dispatcher) Collect(ctx context.Context, userID, taskID string) (TaskStatus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if owner, ok := d.owners[taskID]; !ok || owner != userID {
		return TaskStatus{}, fmt.Errorf("task %s: %w", taskID, errs.ErrNotFound)
	}
	if intake, ok := d.applied[taskID]; ok {
		return TaskStatus{TaskID: taskID, State: asynq.TaskStateCompleted.String(), Intake: &intake}, nil
	}

	info, err := d.inspector.GetTaskInfo(QueueInference, taskID)
	if err != nil {
		return TaskStatus{}, fmt.Errorf("inspect task %s: %w", taskID, err)
	}
	status := TaskStatus{TaskID: taskID, State: info.State.String(), Error: info.LastErr}
	switch info.State {
	case asynq.TaskStateArchived:
		// retries exhausted
		d.finish(userID, taskID, inference.OutcomeFailed, info.LastFailedAt)
		return status, nil
	case asynq.TaskStateCompleted:
	default:
		return status, nil
	}

	var result InferenceResult
	if err := json.Unmarshal(info.Result, &result); err != nil {
		return TaskStatus{}, fmt.Errorf("decode task %s result: %w", taskID, err)
	}
	applied, err := d.registry.For(ctx, userID).Ingest(ctx, result.Intake)
	if err != nil {
		return TaskStatus{}, err
	}
	d.applied[taskID] = applied
	d.finish(userID, taskID, inference.OutcomeClassified, info.CompletedAt)
	status.Intake = &applied
	return status, nil
}
