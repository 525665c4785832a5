package events

import (
	"context"
	"time"

	"github.com/yigit/swimdesk/internal/domain"
)

// Routing keys published on the enrollment exchange
const (
	KeyEnrollmentCreated     = "enrollment.created"
	KeyEnrollmentTransferred = "enrollment.transferred"
	KeyEnrollmentCanceled    = "enrollment.canceled"
)

// EnrollmentEvent is the message body for every enrollment change
type EnrollmentEvent struct {
	Type         string                 `json:"type"`
	EnrollmentID int64                  `json:"enrollmentId"`
	SessionID    int64                  `json:"sessionId"`
	SwimmerID    int64                  `json:"swimmerId"`
	ClassRatio   string                 `json:"classRatio"`
	FromSession  *int64                 `json:"fromSessionId,omitempty"`
	Usage        *domain.CapacityResult `json:"usage,omitempty"`
	ActorID      int64                  `json:"actorId,omitempty"`
	OccurredAt   time.Time              `json:"occurredAt"`
}

// Publisher sends enrollment events to subscribers outside the process
type Publisher interface {
	PublishEnrollment(ctx context.Context, evt EnrollmentEvent) error
	Close() error
}

// NoopPublisher drops every event; used when messaging is disabled
type NoopPublisher struct{}

func (NoopPublisher) PublishEnrollment(context.Context, EnrollmentEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
