package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventJobSubmitted  = "JOB_SUBMITTED"
	EventJobStarted    = "JOB_STARTED"
	EventJobCompleted  = "JOB_COMPLETED"
	EventJobFailed     = "JOB_FAILED"
	EventJobCancelled  = "JOB_CANCELLED"
	EventFilePurged    = "FILE_PURGED"
	EventCreditsReset  = "CREDITS_RESET"
	EventCreditsRefund = "CREDITS_REFUND"
)

func NewJobSubmitted(jobId, userId uuid.UUID, method string, credits int) Event {
	return BaseEvent{
		Type: EventJobSubmitted,
		Data: map[string]interface{}{
			"job_id":  jobId.String(),
			"user_id": userId.String(),
			"method":  method,
			"credits": credits,
		},
		OccurredAt: time.Now(),
	}
}

func NewJobStarted(jobId uuid.UUID) Event {
	return BaseEvent{
		Type: EventJobStarted,
		Data: map[string]interface{}{
			"job_id": jobId.String(),
		},
		OccurredAt: time.Now(),
	}
}

func NewJobCompleted(jobId uuid.UUID, quantizedSize int64, processingTimeSecs int) Event {
	return BaseEvent{
		Type: EventJobCompleted,
		Data: map[string]interface{}{
			"job_id":          jobId.String(),
			"quantized_size":  quantizedSize,
			"processing_time": processingTimeSecs,
		},
		OccurredAt: time.Now(),
	}
}

func NewJobFailed(jobId uuid.UUID, reason string) Event {
	return BaseEvent{
		Type: EventJobFailed,
		Data: map[string]interface{}{
			"job_id": jobId.String(),
			"reason": reason,
		},
		OccurredAt: time.Now(),
	}
}

func NewJobCancelled(jobId uuid.UUID, refunded bool) Event {
	return BaseEvent{
		Type: EventJobCancelled,
		Data: map[string]interface{}{
			"job_id":   jobId.String(),
			"refunded": refunded,
		},
		OccurredAt: time.Now(),
	}
}

func NewFilePurged(fileId uuid.UUID, storagePath string) Event {
	return BaseEvent{
		Type: EventFilePurged,
		Data: map[string]interface{}{
			"file_id":      fileId.String(),
			"storage_path": storagePath,
		},
		OccurredAt: time.Now(),
	}
}

func NewCreditsReset(accountId uuid.UUID, credits int) Event {
	return BaseEvent{
		Type: EventCreditsReset,
		Data: map[string]interface{}{
			"account_id": accountId.String(),
			"credits":    credits,
		},
		OccurredAt: time.Now(),
	}
}

func NewCreditsRefund(accountId, jobId uuid.UUID, amount int) Event {
	return BaseEvent{
		Type: EventCreditsRefund,
		Data: map[string]interface{}{
			"account_id": accountId.String(),
			"job_id":     jobId.String(),
			"amount":     amount,
		},
		OccurredAt: time.Now(),
	}
}
