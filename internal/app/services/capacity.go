package services

import (
	"context"

	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/domain"
)

// capacityLoader gathers the inputs of domain.ComputeUsage for sessions
type capacityLoader struct {
	sessionRepo    SessionStore
	enrollmentRepo EnrollmentStore
}

// classSnapshot is everything the acceptance rule needs about one session
type classSnapshot struct {
	session         *models.Session
	active          []*models.RosterEnrollment
	instructorCount int
}

func (l capacityLoader) snapshot(ctx context.Context, sessionID int64) (*classSnapshot, error) {
	session, err := l.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	instructors, err := l.sessionRepo.InstructorsBySession(ctx, []int64{sessionID})
	if err != nil {
		return nil, err
	}
	active, err := l.enrollmentRepo.ActiveBySessions(ctx, []int64{sessionID})
	if err != nil {
		return nil, err
	}
	session.Instructors = instructors[sessionID]
	return &classSnapshot{
		session:         session,
		active:          active[sessionID],
		instructorCount: len(instructors[sessionID]),
	}, nil
}

// usage returns the current usage, with extra enrollments counted as if they were active
func (c *classSnapshot) usage(extra ...domain.ClassRatio) domain.CapacityResult {
	return domain.ComputeUsage(capacityEnrollments(c.active, extra...), c.instructorCount, c.session.BaseCapacity())
}

// hasSwimmer reports whether swimmerID already holds an active seat
func (c *classSnapshot) hasSwimmer(swimmerID int64) bool {
	for _, e := range c.active {
		if e.SwimmerID == swimmerID {
			return true
		}
	}
	return false
}

func capacityEnrollments(active []*models.RosterEnrollment, extra ...domain.ClassRatio) []domain.CapacityEnrollment {
	out := make([]domain.CapacityEnrollment, 0, len(active)+len(extra))
	for _, e := range active {
		out = append(out, domain.CapacityEnrollment{ClassRatio: e.ClassRatio})
	}
	for _, r := range extra {
		ratio := string(r)
		out = append(out, domain.CapacityEnrollment{ClassRatio: &ratio})
	}
	return out
}
