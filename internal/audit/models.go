package audit

import (
	"time"

	"github.com/google/uuid"
)

// Actions recorded by the submission pipeline.
const (
	ActionLogin             = "auth.login"
	ActionSubmissionCreated = "submission.created"
	ActionSubmissionUpdated = "submission.updated"
	ActionCommentCreated    = "comment.created"
	ActionReportDownloaded  = "report.downloaded"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	ID           uuid.UUID `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	ActorID      uuid.UUID `json:"actorId"`
	Action       string    `json:"action"`
	SubmissionID uuid.UUID `json:"submissionId,omitempty"`
	Detail       string    `json:"detail,omitempty"`
	RequestID    string    `json:"requestId,omitempty"`
}
