package services

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/domain"
	"github.com/yigit/swimdesk/internal/pkg/helpers"
)

// rosterExportLimit caps how many sessions a by-offering summary covers
const rosterExportLimit = 500

// RosterPage is a slot page plus its pagination info
type RosterPage struct {
	domain.SlotPage
	Pagination dto.PaginationInfo `json:"pagination"`
}

// RosterService assembles session rosters for display and printing
type RosterService struct {
	sessionRepo    SessionStore
	enrollmentRepo EnrollmentStore
	location       *time.Location
	logger         zerolog.Logger
}

// NewRosterService creates a new RosterService. Days are cut in loc (UTC when nil).
func NewRosterService(sessionRepo SessionStore, enrollmentRepo EnrollmentStore, loc *time.Location, logger zerolog.Logger) *RosterService {
	if loc == nil {
		loc = time.UTC
	}
	return &RosterService{
		sessionRepo:    sessionRepo,
		enrollmentRepo: enrollmentRepo,
		location:       loc,
		logger:         logger,
	}
}

// GetSlotPage returns one page of sessions in the range as rosters laid out by day
func (s *RosterService) GetSlotPage(ctx context.Context, from, to *time.Time, page, size int) (*RosterPage, error) {
	pg := helpers.NewPage(page, size)
	sessions, total, err := s.sessionRepo.List(ctx, dto.SessionFilter{From: from, To: to}, pg.Offset(), pg.Size)
	if err != nil {
		return nil, err
	}

	slots, err := s.buildSlotPage(ctx, sessions)
	if err != nil {
		return nil, err
	}
	return &RosterPage{
		SlotPage:   slots,
		Pagination: pg.Info(total),
	}, nil
}

// GroupByOffering returns the rosters in the range grouped by offering
func (s *RosterService) GroupByOffering(ctx context.Context, from, to *time.Time) ([]domain.OfferingGroup, error) {
	sessions, total, err := s.sessionRepo.List(ctx, dto.SessionFilter{From: from, To: to}, 0, rosterExportLimit)
	if err != nil {
		return nil, err
	}
	if total > rosterExportLimit {
		s.logger.Warn().Int64("total", total).Int("limit", rosterExportLimit).Msg("Roster summary truncated")
	}

	slots, err := s.buildSlotPage(ctx, sessions)
	if err != nil {
		return nil, err
	}
	return domain.GroupByOffering(slots), nil
}

// buildSlotPage turns start-ordered sessions into day buckets of rosters
func (s *RosterService) buildSlotPage(ctx context.Context, sessions []*models.Session) (domain.SlotPage, error) {
	page := domain.SlotPage{Days: []domain.RosterDay{}}
	if len(sessions) == 0 {
		return page, nil
	}

	ids := make([]int64, len(sessions))
	for i, sess := range sessions {
		ids[i] = sess.ID
	}
	instructors, err := s.sessionRepo.InstructorsBySession(ctx, ids)
	if err != nil {
		return page, err
	}
	active, err := s.enrollmentRepo.ActiveBySessions(ctx, ids)
	if err != nil {
		return page, err
	}
	var enrollmentIDs []int64
	for _, list := range active {
		for _, e := range list {
			enrollmentIDs = append(enrollmentIDs, e.EnrollmentID)
		}
	}
	skips, err := s.enrollmentRepo.SkipDatesByEnrollments(ctx, enrollmentIDs)
	if err != nil {
		return page, err
	}

	for _, sess := range sessions {
		key := helpers.DateKey(sess.StartsAt, s.location)
		roster := newRoster(sess, instructors[sess.ID], active[sess.ID], skips, key)

		last := len(page.Days) - 1
		if last < 0 || page.Days[last].Date != key {
			page.Days = append(page.Days, domain.RosterDay{Date: key, Rosters: []domain.RosterResponse{}})
			last++
		}
		page.Days[last].Rosters = append(page.Days[last].Rosters, roster)
	}
	return page, nil
}

// newRoster lays out one session; a swimmer is marked skipped when a skip exists for day
func newRoster(sess *models.Session, instructors []*models.Instructor, active []*models.RosterEnrollment, skips map[int64]map[string]bool, day string) domain.RosterResponse {
	summary := domain.RosterSession{
		ID:              sess.ID,
		OfferingID:      strconv.FormatInt(sess.OfferingID, 10),
		StartsAt:        sess.StartsAt,
		DurationMinutes: sess.DurationMinutes,
		Location:        helpers.StringValue(sess.Location),
		Instructors:     make([]string, 0, len(instructors)),
	}
	if sess.Offering != nil {
		title := sess.Offering.Title
		summary.OfferingTitle = &title
		summary.OfferingNotes = sess.Offering.Notes
	}
	for _, i := range instructors {
		summary.Instructors = append(summary.Instructors, i.FullName())
	}

	entries := make([]domain.RosterEntry, 0, len(active))
	for _, e := range active {
		entries = append(entries, domain.RosterEntry{
			EnrollmentID: e.EnrollmentID,
			SwimmerID:    e.SwimmerID,
			SwimmerName:  e.SwimmerFirstName + " " + e.SwimmerLastName,
			ClassRatio:   domain.RatioFromPtr(e.ClassRatio).Normalize(),
			Skipped:      skips[e.EnrollmentID][day],
		})
	}

	usage := domain.ComputeUsage(capacityEnrollments(active), len(instructors), sess.BaseCapacity())
	return domain.RosterResponse{
		Session:     summary,
		Enrollments: entries,
		Usage:       &usage,
	}
}
