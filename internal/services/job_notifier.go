package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/pathwise/pathwise-backend/internal/clients/redis"
	types "github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/sse"
)

// JobNotifier pushes job lifecycle events to listening clients. Events go
// through the Redis bus when configured so every backend instance's SSE hub
// sees them; without Redis they go straight to the local hub.
type JobNotifier interface {
	JobCreated(userID uuid.UUID, job *types.JobRun)
	JobProgress(userID uuid.UUID, job *types.JobRun, stage string, progress int, message string)
	JobFailed(userID uuid.UUID, job *types.JobRun, stage string, errorMessage string)
	JobDone(userID uuid.UUID, job *types.JobRun)
}

type jobNotifier struct {
	hub *sse.Hub
	bus redis.SSEBus
	log *logger.Logger
}

func NewJobNotifier(hub *sse.Hub, bus redis.SSEBus, log *logger.Logger) JobNotifier {
	return &jobNotifier{hub: hub, bus: bus, log: log.With("service", "JobNotifier")}
}

func (n *jobNotifier) emit(channel string, event sse.Event, data any) {
	msg := sse.Message{Channel: channel, Event: event, Data: data}
	if n.bus != nil {
		if err := n.bus.Publish(context.Background(), msg); err != nil {
			n.log.Warn("SSE bus publish failed; delivering locally", "error", err)
			if n.hub != nil {
				n.hub.Broadcast(msg)
			}
		}
		return
	}
	if n.hub != nil {
		n.hub.Broadcast(msg)
	}
}

func (n *jobNotifier) JobCreated(userID uuid.UUID, job *types.JobRun) {
	n.emit(sse.UserChannel(userID), sse.EventJobCreated, map[string]any{"job": job})
}

func (n *jobNotifier) JobProgress(userID uuid.UUID, job *types.JobRun, stage string, progress int, message string) {
	data := map[string]any{
		"job_id":   job.ID,
		"job_type": job.JobType,
		"stage":    stage,
		"progress": progress,
		"message":  message,
		"job":      job,
	}
	n.emit(sse.UserChannel(userID), sse.EventJobProgress, data)
	n.emit(sse.JobChannel(job.ID), sse.EventJobProgress, data)
}

func (n *jobNotifier) JobFailed(userID uuid.UUID, job *types.JobRun, stage string, errorMessage string) {
	data := map[string]any{
		"job_id":   job.ID,
		"job_type": job.JobType,
		"stage":    stage,
		"error":    errorMessage,
		"job":      job,
	}
	n.emit(sse.UserChannel(userID), sse.EventJobFailed, data)
	n.emit(sse.JobChannel(job.ID), sse.EventJobFailed, data)
}

func (n *jobNotifier) JobDone(userID uuid.UUID, job *types.JobRun) {
	data := map[string]any{
		"job_id":   job.ID,
		"job_type": job.JobType,
		"job":      job,
	}
	n.emit(sse.UserChannel(userID), sse.EventJobSucceeded, data)
	n.emit(sse.JobChannel(job.ID), sse.EventJobSucceeded, data)
}
