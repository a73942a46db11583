package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"wardrobeapi/errs"
	"wardrobeapi/inference"
	"wardrobeapi/kvstore"
	"wardrobeapi/logger"
	"wardrobeapi/wardrobe"

	"github.com/hibiken/asynq"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instantSimulator(score float64) *inference.Simulator {
	n := 0
	return &inference.Simulator{
		Confidence: func(inference.Upload, int) float64 { return score },
		NewID: func() string {
			n++
			return "id" + string(rune('a'+n)) + "-x"
		},
	}
}

func TestNewInferenceTask(t *testing.T) {
	task, err := NewInferenceTask("u1", inference.Upload{FileName: "shirt.jpg", Multiple: true}, 0.8)
	require.NoError(t, err)
	assert.Equal(t, TypeInferenceClassify, task.Type())

	var payload InferencePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "u1", payload.UserID)
	assert.True(t, payload.Upload.Multiple)
	assert.Equal(t, 0.8, payload.Threshold)
}

func TestHandleInferenceTaskSkipsRetryOnBadPayload(t *testing.T) {
	err := HandleInferenceTask(context.Background(), asynq.NewTask(TypeInferenceClassify, []byte("{")), instantSimulator(0.9), logger.Discard())
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleInferenceTaskWithoutResultWriter(t *testing.T) {
	task, err := NewInferenceTask("u1", inference.Upload{FileName: "shirt.jpg"}, 0)
	require.NoError(t, err)
	assert.NoError(t, HandleInferenceTask(context.Background(), task, instantSimulator(0.9), logger.Discard()))
}

func TestHandleInferenceTaskLogsThroughLogger(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	task, err := NewInferenceTask("u1", inference.Upload{FileName: "shirt.jpg"}, 0)
	require.NoError(t, err)

	require.NoError(t, HandleInferenceTask(context.Background(), task, instantSimulator(0.9), log))

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "classifying queued upload", entries[0].Message)
	assert.Equal(t, "u1", entries[0].Data["user"])
	assert.Equal(t, "queued upload classified", entries[1].Message)
	assert.Equal(t, 1, entries[1].Data["accepted"])
}

func TestClassifyRoutesCandidates(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	payload := InferencePayload{UserID: "u1", Upload: inference.Upload{FileName: "look.jpg", Multiple: true}, Threshold: 0.75}

	accepted, err := Classify(context.Background(), payload, instantSimulator(0.9), now)
	require.NoError(t, err)
	assert.Len(t, accepted.Intake.Items, 3)
	assert.Len(t, accepted.Intake.Groups, 1)

	pending, err := Classify(context.Background(), payload, instantSimulator(0.5), now)
	require.NoError(t, err)
	assert.Empty(t, pending.Intake.Items)
	assert.Len(t, pending.Intake.Pending, 3)
}

type fakeQueue struct {
	enqueued []*asynq.Task
	info     *asynq.TaskInfo
}

func (f *fakeQueue) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.enqueued = append(f.enqueued, task)
	return &asynq.TaskInfo{ID: fmt.Sprintf("task-%d", len(f.enqueued)), Queue: QueueInference, State: asynq.TaskStatePending}, nil
}

func (f *fakeQueue) GetTaskInfo(_, id string) (*asynq.TaskInfo, error) {
	if f.info == nil || f.info.ID != id {
		return nil, asynq.ErrTaskNotFound
	}
	return f.info, nil
}

func TestDispatcherAppliesResultOnce(t *testing.T) {
	ctx := context.Background()
	registry := wardrobe.NewRegistry(kvstore.NewMemoryStore(), logger.Discard())
	queue := &fakeQueue{}
	dispatcher := NewDispatcher(queue, queue, registry, inference.DefaultThreshold)

	taskID, err := dispatcher.Enqueue("u1", inference.Upload{FileName: "look.jpg", Multiple: true})
	require.NoError(t, err)
	require.Len(t, queue.enqueued, 1)

	queue.info = &asynq.TaskInfo{ID: taskID, State: asynq.TaskStateActive}
	status, err := dispatcher.Collect(ctx, "u1", taskID)
	require.NoError(t, err)
	assert.Equal(t, "active", status.State)
	assert.Nil(t, status.Intake)

	result, err := Classify(ctx, InferencePayload{UserID: "u1", Upload: inference.Upload{FileName: "look.jpg", Multiple: true}, Threshold: 0.75}, instantSimulator(0.9), time.Now())
	require.NoError(t, err)
	raw, err := json.Marshal(result)
	require.NoError(t, err)
	queue.info = &asynq.TaskInfo{ID: taskID, State: asynq.TaskStateCompleted, Result: raw}

	status, err = dispatcher.Collect(ctx, "u1", taskID)
	require.NoError(t, err)
	assert.Equal(t, "completed", status.State)
	require.NotNil(t, status.Intake)
	assert.Len(t, registry.For(ctx, "u1").Items(), 9)

	_, err = dispatcher.Collect(ctx, "u1", taskID)
	require.NoError(t, err)
	assert.Len(t, registry.For(ctx, "u1").Items(), 9)

	_, err = dispatcher.Collect(ctx, "u2", taskID)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingObserver) ObserveUpload(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func TestDispatcherAllowsOneQueuedUploadPerUser(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	registry := wardrobe.NewRegistry(kvstore.NewMemoryStore(), logger.Discard())
	queue := &fakeQueue{}
	observer := &recordingObserver{}
	dispatcher := NewDispatcher(queue, queue, registry, inference.DefaultThreshold).
		WithClock(func() time.Time { return current }).
		WithObserver(observer)
	upload := inference.Upload{FileName: "shirt.jpg"}

	first, err := dispatcher.Enqueue("u1", upload)
	require.NoError(t, err)
	_, err = dispatcher.Enqueue("u1", upload)
	assert.ErrorIs(t, err, errs.ErrUploadInProgress)
	_, err = dispatcher.Enqueue("u2", upload)
	require.NoError(t, err)

	// a task that exhausted its retries frees the slot
	queue.info = &asynq.TaskInfo{ID: first, State: asynq.TaskStateArchived, LastErr: "boom", LastFailedAt: current.Add(time.Minute)}
	status, err := dispatcher.Collect(ctx, "u1", first)
	require.NoError(t, err)
	assert.Equal(t, "archived", status.State)
	assert.Equal(t, "boom", status.Error)

	second, err := dispatcher.Enqueue("u1", upload)
	require.NoError(t, err)
	_, err = dispatcher.Enqueue("u1", upload)
	assert.ErrorIs(t, err, errs.ErrUploadInProgress)

	// never collected, the slot expires with the task result
	current = current.Add(resultRetention)
	third, err := dispatcher.Enqueue("u1", upload)
	require.NoError(t, err)
	assert.NotEqual(t, second, third)

	assert.Equal(t, []string{inference.OutcomeRejected, inference.OutcomeFailed, inference.OutcomeRejected}, observer.outcomes)
}

func TestDispatcherReportsClassifiedOnCollect(t *testing.T) {
	ctx := context.Background()
	enqueuedAt := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	registry := wardrobe.NewRegistry(kvstore.NewMemoryStore(), logger.Discard())
	queue := &fakeQueue{}
	observer := &recordingObserver{}
	dispatcher := NewDispatcher(queue, queue, registry, inference.DefaultThreshold).
		WithClock(func() time.Time { return enqueuedAt }).
		WithObserver(observer)

	taskID, err := dispatcher.Enqueue("u1", inference.Upload{FileName: "shirt.jpg"})
	require.NoError(t, err)

	result, err := Classify(ctx, InferencePayload{UserID: "u1", Upload: inference.Upload{FileName: "shirt.jpg"}, Threshold: 0.75}, instantSimulator(0.9), enqueuedAt)
	require.NoError(t, err)
	raw, err := json.Marshal(result)
	require.NoError(t, err)
	queue.info = &asynq.TaskInfo{ID: taskID, State: asynq.TaskStateCompleted, Result: raw, CompletedAt: enqueuedAt.Add(time.Second)}

	_, err = dispatcher.Collect(ctx, "u1", taskID)
	require.NoError(t, err)
	_, err = dispatcher.Collect(ctx, "u1", taskID)
	require.NoError(t, err)

	assert.Equal(t, []string{inference.OutcomeClassified}, observer.outcomes)
	_, err = dispatcher.Enqueue("u1", inference.Upload{FileName: "pants.jpg"})
	assert.NoError(t, err)
}
