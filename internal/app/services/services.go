package services

import (
	"context"
	"time"

	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/domain"
)

// Transactor runs fn inside a database transaction carried by ctx
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserStore is the user persistence used by AuthService
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, userID int64) error
	UpdatePassword(ctx context.Context, userID int64, hash string) error
	List(ctx context.Context, offset uint64, limit int) ([]*models.User, int64, error)
}

// TokenStore persists refresh tokens
type TokenStore interface {
	CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	GetTokenByValue(ctx context.Context, token string) (int64, time.Time, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
}

// OfferingStore persists offerings
type OfferingStore interface {
	Create(ctx context.Context, o *models.Offering) error
	GetByID(ctx context.Context, id int64) (*models.Offering, error)
	List(ctx context.Context, activeOnly bool, offset uint64, limit int) ([]*models.Offering, int64, error)
	Update(ctx context.Context, o *models.Offering) error
	Delete(ctx context.Context, id int64) error
}

// InstructorStore persists instructors
type InstructorStore interface {
	Create(ctx context.Context, i *models.Instructor) error
	GetByID(ctx context.Context, id int64) (*models.Instructor, error)
	List(ctx context.Context, activeOnly bool) ([]*models.Instructor, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.Instructor, error)
	Update(ctx context.Context, i *models.Instructor) error
	Delete(ctx context.Context, id int64) error
}

// SwimmerStore persists swimmers
type SwimmerStore interface {
	Create(ctx context.Context, s *models.Swimmer) error
	GetByID(ctx context.Context, id int64) (*models.Swimmer, error)
	List(ctx context.Context, search string, offset uint64, limit int) ([]*models.Swimmer, int64, error)
	Update(ctx context.Context, s *models.Swimmer) error
	Delete(ctx context.Context, id int64) error
}

// SessionStore persists scheduled sessions and their instructor assignments
type SessionStore interface {
	Create(ctx context.Context, s *models.Session) error
	GetByID(ctx context.Context, id int64) (*models.Session, error)
	LockByID(ctx context.Context, id int64) error
	List(ctx context.Context, filter dto.SessionFilter, offset uint64, limit int) ([]*models.Session, int64, error)
	Update(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, id int64) error
	ReplaceInstructors(ctx context.Context, sessionID int64, instructorIDs []int64) error
	InstructorsBySession(ctx context.Context, sessionIDs []int64) (map[int64][]*models.Instructor, error)
}

// EnrollmentStore persists enrollments and skips
type EnrollmentStore interface {
	Create(ctx context.Context, e *models.Enrollment) error
	GetByID(ctx context.Context, id int64) (*models.Enrollment, error)
	List(ctx context.Context, filter dto.EnrollmentFilter, offset uint64, limit int) ([]*models.Enrollment, int64, error)
	UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) error
	ActiveBySessions(ctx context.Context, sessionIDs []int64) (map[int64][]*models.RosterEnrollment, error)
	SkipDatesByEnrollments(ctx context.Context, enrollmentIDs []int64) (map[int64]map[string]bool, error)
	CreateSkip(ctx context.Context, skip *models.EnrollmentSkip) error
	ListSkips(ctx context.Context, enrollmentID int64) ([]*models.EnrollmentSkip, error)
}

// PaymentStore persists payments
type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id int64) (*models.Payment, error)
	List(ctx context.Context, filter dto.PaymentFilter) ([]*models.Payment, error)
	MarkRefunded(ctx context.Context, id int64, at time.Time) error
	SumPaid(ctx context.Context, enrollmentID int64) (int64, error)
}

// UsageNotifier pushes fresh usage snapshots to live subscribers
type UsageNotifier interface {
	BroadcastUsage(sessionID int64, usage domain.CapacityResult)
}

type noopNotifier struct{}

func (noopNotifier) BroadcastUsage(int64, domain.CapacityResult) {}

// CapacityDefaults are the school-wide fallbacks applied when an offering leaves them unset
type CapacityDefaults struct {
	BaseCapacity float64
	ClassRatio   domain.ClassRatio
}

// Services holds all the service instances
type Services struct {
	AuthService       *AuthService
	OfferingService   *OfferingService
	InstructorService *InstructorService
	SwimmerService    *SwimmerService
	SessionService    *SessionService
	EnrollmentService *EnrollmentService
	RosterService     *RosterService
	PaymentService    *PaymentService
}
