package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wardrobeapi/inference"
	"wardrobeapi/wardrobe"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

const (
	TypeInferenceClassify = "inference:classify"
	QueueInference        = "inference"

	resultRetention = time.Hour
)

type InferencePayload struct {
	UserID    string           `json:"user_id"`
	Upload    inference.Upload `json:"upload"`
	Threshold float64          `json:"threshold"`
}

// InferenceResult is written as the task result and applied by the API.
type InferenceResult struct {
	UserID string          `json:"user_id"`
	Intake wardrobe.Intake `json:"intake"`
}

func NewInferenceTask(userID string, upload inference.Upload, threshold float64) (*asynq.Task, error) {
	payload, err := json.Marshal(InferencePayload{UserID: userID, Upload: upload, Threshold: threshold})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeInferenceClassify, payload), nil
}

// Classify runs the simulator for the payload and routes the candidates.
func Classify(ctx context.Context, payload InferencePayload, sim *inference.Simulator, now time.Time) (InferenceResult, error) {
	candidates, err := sim.Infer(ctx, payload.Upload)
	if err != nil {
		return InferenceResult{}, err
	}
	return InferenceResult{
		UserID: payload.UserID,
		Intake: inference.Route(candidates, payload.Threshold, now),
	}, nil
}

func HandleInferenceTask(ctx context.Context, t *asynq.Task, sim *inference.Simulator, log *logrus.Logger) error {
	var payload InferencePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		// malformed payloads will never succeed
		return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	if payload.Threshold <= 0 {
		payload.Threshold = inference.DefaultThreshold
	}

	taskLog := log.WithFields(logrus.Fields{"user": payload.UserID, "file": payload.Upload.FileName})
	taskLog.Info("classifying queued upload")
	result, err := Classify(ctx, payload, sim, time.Now())
	if err != nil {
		taskLog.WithError(err).Warn("classification failed")
		sentry.CaptureException(fmt.Errorf("[Inference: %s] classification failed: %w", payload.UserID, err))
		return err
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if w := t.ResultWriter(); w != nil {
		if _, err := w.Write(raw); err != nil {
			return fmt.Errorf("write %s result: %w", t.Type(), err)
		}
	}
	taskLog.WithFields(logrus.Fields{"accepted": len(result.Intake.Items), "pending": len(result.Intake.Pending)}).Info("queued upload classified")
	return nil
}
