package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/domain"
	"github.com/yigit/swimdesk/internal/pkg/apperrors"
	"github.com/yigit/swimdesk/internal/pkg/cache"
	"github.com/yigit/swimdesk/internal/pkg/helpers"
	"github.com/yigit/swimdesk/internal/pkg/metrics"
)

// SessionService schedules sessions and reports their seat usage
type SessionService struct {
	tx             Transactor
	sessionRepo    SessionStore
	offeringRepo   OfferingStore
	instructorRepo InstructorStore
	usageCache     cache.UsageCache
	notifier       UsageNotifier
	loader         capacityLoader
	logger         zerolog.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(
	tx Transactor,
	sessionRepo SessionStore,
	offeringRepo OfferingStore,
	instructorRepo InstructorStore,
	enrollmentRepo EnrollmentStore,
	usageCache cache.UsageCache,
	notifier UsageNotifier,
	logger zerolog.Logger,
) *SessionService {
	if usageCache == nil {
		usageCache = cache.NoopUsageCache{}
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &SessionService{
		tx:             tx,
		sessionRepo:    sessionRepo,
		offeringRepo:   offeringRepo,
		instructorRepo: instructorRepo,
		usageCache:     usageCache,
		notifier:       notifier,
		loader:         capacityLoader{sessionRepo: sessionRepo, enrollmentRepo: enrollmentRepo},
		logger:         logger,
	}
}

// checkInstructors fails when any id does not name an instructor
func (s *SessionService) checkInstructors(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	unique := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	found, err := s.instructorRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(unique) {
		return apperrors.ErrInstructorNotFound
	}
	return nil
}

// CreateSession schedules a session and assigns its instructors in one transaction
func (s *SessionService) CreateSession(ctx context.Context, req *dto.SessionRequest) (*models.Session, error) {
	if _, err := s.offeringRepo.GetByID(ctx, req.OfferingID); err != nil {
		return nil, err
	}
	if err := s.checkInstructors(ctx, req.InstructorIDs); err != nil {
		return nil, err
	}

	session := &models.Session{
		OfferingID:       req.OfferingID,
		StartsAt:         req.StartsAt.UTC(),
		DurationMinutes:  req.DurationMinutes,
		Location:         helpers.NullIfBlank(req.Location),
		CapacityOverride: req.CapacityOverride,
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.sessionRepo.Create(ctx, session); err != nil {
			return err
		}
		if len(req.InstructorIDs) > 0 {
			return s.sessionRepo.ReplaceInstructors(ctx, session.ID, req.InstructorIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("sessionID", session.ID).Int64("offeringID", session.OfferingID).Msg("Session scheduled")
	return s.GetSessionByID(ctx, session.ID)
}

// GetSessionByID retrieves a session with its offering and instructors
func (s *SessionService) GetSessionByID(ctx context.Context, id int64) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	instructors, err := s.sessionRepo.InstructorsBySession(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	session.Instructors = instructors[id]
	return session, nil
}

// ListSessions returns a page of sessions with their instructors
func (s *SessionService) ListSessions(ctx context.Context, filter dto.SessionFilter, page, size int) (*dto.PaginatedResponse, error) {
	pg := helpers.NewPage(page, size)
	sessions, total, err := s.sessionRepo.List(ctx, filter, pg.Offset(), pg.Size)
	if err != nil {
		return nil, err
	}
	if err := s.attachInstructors(ctx, sessions); err != nil {
		return nil, err
	}
	return &dto.PaginatedResponse{
		Items:      sessions,
		Pagination: pg.Info(total),
	}, nil
}

func (s *SessionService) attachInstructors(ctx context.Context, sessions []*models.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	ids := make([]int64, len(sessions))
	for i, sess := range sessions {
		ids[i] = sess.ID
	}
	bySession, err := s.sessionRepo.InstructorsBySession(ctx, ids)
	if err != nil {
		return err
	}
	for _, sess := range sessions {
		sess.Instructors = bySession[sess.ID]
	}
	return nil
}

// UpdateSession reschedules a session. Instructors are replaced only when the request lists them.
func (s *SessionService) UpdateSession(ctx context.Context, id int64, req *dto.SessionRequest) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.OfferingID != req.OfferingID {
		if _, err := s.offeringRepo.GetByID(ctx, req.OfferingID); err != nil {
			return nil, err
		}
	}
	if err := s.checkInstructors(ctx, req.InstructorIDs); err != nil {
		return nil, err
	}

	session.OfferingID = req.OfferingID
	session.StartsAt = req.StartsAt.UTC()
	session.DurationMinutes = req.DurationMinutes
	session.Location = helpers.NullIfBlank(req.Location)
	session.CapacityOverride = req.CapacityOverride

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.sessionRepo.LockByID(ctx, id); err != nil {
			return err
		}
		if err := s.sessionRepo.Update(ctx, session); err != nil {
			return err
		}
		if req.InstructorIDs != nil {
			return s.sessionRepo.ReplaceInstructors(ctx, id, req.InstructorIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.usageChanged(ctx, id)
	return s.GetSessionByID(ctx, id)
}

// AssignInstructors replaces the instructors of a session
func (s *SessionService) AssignInstructors(ctx context.Context, id int64, req *dto.AssignInstructorsRequest) (*models.Session, error) {
	if err := s.checkInstructors(ctx, req.InstructorIDs); err != nil {
		return nil, err
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.sessionRepo.LockByID(ctx, id); err != nil {
			return err
		}
		return s.sessionRepo.ReplaceInstructors(ctx, id, req.InstructorIDs)
	})
	if err != nil {
		return nil, err
	}

	s.usageChanged(ctx, id)
	return s.GetSessionByID(ctx, id)
}

// DeleteSession deletes a session with no enrollments
func (s *SessionService) DeleteSession(ctx context.Context, id int64) error {
	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.usageCache.InvalidateUsage(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("sessionID", id).Msg("Could not invalidate usage cache")
	}
	return nil
}

// GetUsage returns the seat usage of a session, served from cache when possible
func (s *SessionService) GetUsage(ctx context.Context, id int64) (*dto.SessionUsageResponse, error) {
	cached, err := s.usageCache.GetUsage(ctx, id)
	switch {
	case err == nil:
		metrics.RecordUsageCacheLookup(true)
		return &dto.SessionUsageResponse{SessionID: id, Usage: *cached, Cached: true}, nil
	case errors.Is(err, cache.ErrCacheMiss):
		metrics.RecordUsageCacheLookup(false)
	default:
		metrics.RecordUsageCacheLookup(false)
		s.logger.Warn().Err(err).Int64("sessionID", id).Msg("Usage cache lookup failed")
	}

	usage, err := s.computeUsage(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.usageCache.SetUsage(ctx, id, usage); err != nil {
		s.logger.Warn().Err(err).Int64("sessionID", id).Msg("Could not cache usage")
	}
	return &dto.SessionUsageResponse{SessionID: id, Usage: usage}, nil
}

// LookupUsage adapts GetUsage for the websocket handler
func (s *SessionService) LookupUsage(ctx context.Context, id int64) (*domain.CapacityResult, error) {
	resp, err := s.GetUsage(ctx, id)
	if err != nil {
		return nil, err
	}
	return &resp.Usage, nil
}

func (s *SessionService) computeUsage(ctx context.Context, id int64) (domain.CapacityResult, error) {
	snap, err := s.loader.snapshot(ctx, id)
	if err != nil {
		return domain.CapacityResult{}, fmt.Errorf("failed to load session %d: %w", id, err)
	}
	return snap.usage(), nil
}

// usageChanged drops the cached usage and pushes the fresh one to subscribers
func (s *SessionService) usageChanged(ctx context.Context, id int64) {
	if err := s.usageCache.InvalidateUsage(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("sessionID", id).Msg("Could not invalidate usage cache")
	}
	usage, err := s.computeUsage(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Int64("sessionID", id).Msg("Could not recompute usage")
		return
	}
	s.notifier.BroadcastUsage(id, usage)
}
