package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/domain"
	"github.com/yigit/swimdesk/internal/pkg/apperrors"
	"github.com/yigit/swimdesk/internal/pkg/cache"
	"github.com/yigit/swimdesk/internal/pkg/events"
	"github.com/yigit/swimdesk/internal/pkg/helpers"
	"github.com/yigit/swimdesk/internal/pkg/metrics"
)

// EnrollmentService places swimmers into sessions under the capacity rule
type EnrollmentService struct {
	tx             Transactor
	sessionRepo    SessionStore
	swimmerRepo    SwimmerStore
	enrollmentRepo EnrollmentStore
	paymentRepo    PaymentStore
	loader         capacityLoader
	usageCache     cache.UsageCache
	publisher      events.Publisher
	notifier       UsageNotifier
	defaultRatio   domain.ClassRatio
	now            func() time.Time
	logger         zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(
	tx Transactor,
	sessionRepo SessionStore,
	swimmerRepo SwimmerStore,
	enrollmentRepo EnrollmentStore,
	paymentRepo PaymentStore,
	usageCache cache.UsageCache,
	publisher events.Publisher,
	notifier UsageNotifier,
	defaultRatio domain.ClassRatio,
	logger zerolog.Logger,
) *EnrollmentService {
	if usageCache == nil {
		usageCache = cache.NoopUsageCache{}
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if defaultRatio == "" {
		defaultRatio = domain.DefaultRatio
	}
	return &EnrollmentService{
		tx:             tx,
		sessionRepo:    sessionRepo,
		swimmerRepo:    swimmerRepo,
		enrollmentRepo: enrollmentRepo,
		paymentRepo:    paymentRepo,
		loader:         capacityLoader{sessionRepo: sessionRepo, enrollmentRepo: enrollmentRepo},
		usageCache:     usageCache,
		publisher:      publisher,
		notifier:       notifier,
		defaultRatio:   defaultRatio,
		now:            time.Now,
		logger:         logger,
	}
}

// resolveRatio picks the requested ratio, then the offering default, then the school default
func (s *EnrollmentService) resolveRatio(requested *string, session *models.Session) (domain.ClassRatio, error) {
	if r := helpers.NullIfBlank(requested); r != nil {
		ratio := domain.ClassRatio(*r)
		if !ratio.IsKnown() {
			return "", apperrors.NewBadRequestError("unknown class ratio: " + *r)
		}
		return ratio, nil
	}
	if session.Offering != nil && session.Offering.DefaultClassRatio != "" {
		return domain.ClassRatio(session.Offering.DefaultClassRatio), nil
	}
	return s.defaultRatio, nil
}

// admit applies the acceptance rule: the class must still fit with the candidate counted in
func admit(snap *classSnapshot, swimmerID int64, ratio domain.ClassRatio) (domain.CapacityResult, error) {
	if snap.hasSwimmer(swimmerID) {
		return domain.CapacityResult{}, apperrors.ErrAlreadyEnrolled
	}
	after := snap.usage(ratio)
	if after.Filled > after.EffectiveCapacity {
		return domain.CapacityResult{}, apperrors.ErrClassFull
	}
	return after, nil
}

// Enroll places a swimmer into a session if the class has room
func (s *EnrollmentService) Enroll(ctx context.Context, actorID int64, req *dto.EnrollRequest) (*models.Enrollment, error) {
	if _, err := s.swimmerRepo.GetByID(ctx, req.SwimmerID); err != nil {
		metrics.RecordEnrollment(metrics.OutcomeError)
		return nil, err
	}

	var (
		enrollment *models.Enrollment
		usage      domain.CapacityResult
	)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.sessionRepo.LockByID(ctx, req.SessionID); err != nil {
			return err
		}
		snap, err := s.loader.snapshot(ctx, req.SessionID)
		if err != nil {
			return err
		}
		ratio, err := s.resolveRatio(req.ClassRatio, snap.session)
		if err != nil {
			return err
		}
		if usage, err = admit(snap, req.SwimmerID, ratio); err != nil {
			return err
		}

		r := string(ratio)
		enrollment = &models.Enrollment{
			SessionID:  req.SessionID,
			SwimmerID:  req.SwimmerID,
			ClassRatio: &r,
			Status:     models.EnrollmentActive,
			Notes:      helpers.NullIfBlank(req.Notes),
		}
		return s.enrollmentRepo.Create(ctx, enrollment)
	})
	if err != nil {
		s.recordRejection(err)
		return nil, err
	}

	metrics.RecordEnrollment(metrics.OutcomeCreated)
	s.logger.Info().
		Int64("enrollmentID", enrollment.ID).
		Int64("sessionID", enrollment.SessionID).
		Int64("swimmerID", enrollment.SwimmerID).
		Float64("filled", usage.Filled).
		Msg("Swimmer enrolled")

	s.afterChange(ctx, events.EnrollmentEvent{
		Type:         events.KeyEnrollmentCreated,
		EnrollmentID: enrollment.ID,
		SessionID:    enrollment.SessionID,
		SwimmerID:    enrollment.SwimmerID,
		ClassRatio:   helpers.StringValue(enrollment.ClassRatio),
		Usage:        &usage,
		ActorID:      actorID,
	})
	return enrollment, nil
}

// Transfer moves an active enrollment to another session, checking the target's capacity
func (s *EnrollmentService) Transfer(ctx context.Context, actorID, enrollmentID int64, req *dto.TransferRequest) (*dto.TransferResponse, error) {
	current, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if current.SessionID == req.TargetSessionID {
		return nil, apperrors.ErrSameSession
	}
	fromSession := current.SessionID

	var (
		moved      *models.Enrollment
		targetUsed domain.CapacityResult
	)
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		// Lock in id order so two opposite transfers cannot deadlock
		first, second := fromSession, req.TargetSessionID
		if second < first {
			first, second = second, first
		}
		if err := s.sessionRepo.LockByID(ctx, first); err != nil {
			return err
		}
		if err := s.sessionRepo.LockByID(ctx, second); err != nil {
			return err
		}

		// Re-read under the lock: a concurrent cancel or transfer may have won
		fresh, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
		if err != nil {
			return err
		}
		if !fresh.IsActive() {
			return apperrors.ErrEnrollmentNotActive
		}

		target, err := s.loader.snapshot(ctx, req.TargetSessionID)
		if err != nil {
			return err
		}
		ratio := domain.RatioFromPtr(fresh.ClassRatio).Normalize()
		if targetUsed, err = admit(target, fresh.SwimmerID, ratio); err != nil {
			return err
		}

		if err := s.enrollmentRepo.UpdateStatus(ctx, fresh.ID, models.EnrollmentTransferred); err != nil {
			return err
		}
		fresh.Status = models.EnrollmentTransferred
		current = fresh

		r := string(ratio)
		notes := helpers.NullIfBlank(req.Reason)
		if notes == nil {
			notes = fresh.Notes
		}
		moved = &models.Enrollment{
			SessionID:         req.TargetSessionID,
			SwimmerID:         fresh.SwimmerID,
			ClassRatio:        &r,
			Status:            models.EnrollmentActive,
			Notes:             notes,
			TransferredFromID: &fresh.ID,
		}
		return s.enrollmentRepo.Create(ctx, moved)
	})
	if err != nil {
		s.recordRejection(err)
		return nil, err
	}

	metrics.RecordEnrollment(metrics.OutcomeTransferred)
	s.logger.Info().
		Int64("enrollmentID", enrollmentID).
		Int64("fromSessionID", fromSession).
		Int64("toSessionID", moved.SessionID).
		Msg("Enrollment transferred")

	s.afterChange(ctx, events.EnrollmentEvent{
		Type:         events.KeyEnrollmentTransferred,
		EnrollmentID: moved.ID,
		SessionID:    moved.SessionID,
		SwimmerID:    moved.SwimmerID,
		ClassRatio:   helpers.StringValue(moved.ClassRatio),
		FromSession:  &fromSession,
		Usage:        &targetUsed,
		ActorID:      actorID,
	}, fromSession)
	return &dto.TransferResponse{From: current, To: moved}, nil
}

// Cancel frees the seat of an active enrollment
func (s *EnrollmentService) Cancel(ctx context.Context, actorID, enrollmentID int64) (*models.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.sessionRepo.LockByID(ctx, enrollment.SessionID); err != nil {
			return err
		}
		return s.enrollmentRepo.UpdateStatus(ctx, enrollmentID, models.EnrollmentCanceled)
	})
	if err != nil {
		return nil, err
	}
	enrollment.Status = models.EnrollmentCanceled

	metrics.RecordEnrollment(metrics.OutcomeCanceled)
	s.logger.Info().Int64("enrollmentID", enrollmentID).Int64("sessionID", enrollment.SessionID).Msg("Enrollment canceled")

	s.afterChange(ctx, events.EnrollmentEvent{
		Type:         events.KeyEnrollmentCanceled,
		EnrollmentID: enrollment.ID,
		SessionID:    enrollment.SessionID,
		SwimmerID:    enrollment.SwimmerID,
		ClassRatio:   helpers.StringValue(enrollment.ClassRatio),
		ActorID:      actorID,
	})
	return enrollment, nil
}

// RecordSkip marks one date as skipped for an active enrollment
func (s *EnrollmentService) RecordSkip(ctx context.Context, enrollmentID int64, req *dto.SkipRequest) (*models.EnrollmentSkip, error) {
	date, err := helpers.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	enrollment, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if !enrollment.IsActive() {
		return nil, apperrors.ErrEnrollmentNotActive
	}

	skip := &models.EnrollmentSkip{
		EnrollmentID: enrollmentID,
		SkipDate:     date,
		Reason:       helpers.NullIfBlank(req.Reason),
	}
	if err := s.enrollmentRepo.CreateSkip(ctx, skip); err != nil {
		return nil, err
	}
	return skip, nil
}

// ListSkips returns the skipped dates of an enrollment
func (s *EnrollmentService) ListSkips(ctx context.Context, enrollmentID int64) ([]*models.EnrollmentSkip, error) {
	if _, err := s.enrollmentRepo.GetByID(ctx, enrollmentID); err != nil {
		return nil, err
	}
	return s.enrollmentRepo.ListSkips(ctx, enrollmentID)
}

// GetEnrollmentByID retrieves an enrollment
func (s *EnrollmentService) GetEnrollmentByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	return s.enrollmentRepo.GetByID(ctx, id)
}

// ListEnrollments returns a page of enrollments
func (s *EnrollmentService) ListEnrollments(ctx context.Context, filter dto.EnrollmentFilter, page, size int) (*dto.PaginatedResponse, error) {
	pg := helpers.NewPage(page, size)
	enrollments, total, err := s.enrollmentRepo.List(ctx, filter, pg.Offset(), pg.Size)
	if err != nil {
		return nil, err
	}
	return &dto.PaginatedResponse{
		Items:      enrollments,
		Pagination: pg.Info(total),
	}, nil
}

// GetBalance reports the offering price minus non-refunded payments
func (s *EnrollmentService) GetBalance(ctx context.Context, enrollmentID int64) (*dto.BalanceResponse, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	session, err := s.sessionRepo.GetByID(ctx, enrollment.SessionID)
	if err != nil {
		return nil, err
	}
	paid, err := s.paymentRepo.SumPaid(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	var price int64
	if session.Offering != nil {
		price = session.Offering.PriceCents
	}
	return &dto.BalanceResponse{
		EnrollmentID: enrollmentID,
		PriceCents:   price,
		PaidCents:    paid,
		BalanceCents: price - paid,
	}, nil
}

func (s *EnrollmentService) recordRejection(err error) {
	switch {
	case errors.Is(err, apperrors.ErrClassFull):
		metrics.RecordEnrollment(metrics.OutcomeRejectedFull)
	case errors.Is(err, apperrors.ErrAlreadyEnrolled):
		metrics.RecordEnrollment(metrics.OutcomeDuplicate)
	default:
		metrics.RecordEnrollment(metrics.OutcomeError)
	}
}

// afterChange runs the post-commit side effects of an enrollment change.
// None of them can undo the change, so failures are logged and counted only.
func (s *EnrollmentService) afterChange(ctx context.Context, evt events.EnrollmentEvent, otherSessions ...int64) {
	sessionIDs := append([]int64{evt.SessionID}, otherSessions...)
	if err := s.usageCache.InvalidateUsage(ctx, sessionIDs...); err != nil {
		s.logger.Warn().Err(err).Ints64("sessionIDs", sessionIDs).Msg("Could not invalidate usage cache")
	}

	evt.OccurredAt = s.now().UTC()
	if err := s.publisher.PublishEnrollment(ctx, evt); err != nil {
		metrics.RecordEventPublishFailure()
		s.logger.Error().Err(err).Str("type", evt.Type).Int64("enrollmentID", evt.EnrollmentID).Msg("Failed to publish enrollment event")
	}

	for _, id := range sessionIDs {
		snap, err := s.loader.snapshot(ctx, id)
		if err != nil {
			s.logger.Warn().Err(err).Int64("sessionID", id).Msg("Could not recompute usage")
			continue
		}
		s.notifier.BroadcastUsage(id, snap.usage())
	}
}
