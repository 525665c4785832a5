package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/domain"
	"github.com/yigit/swimdesk/internal/pkg/apperrors"
	"github.com/yigit/swimdesk/internal/pkg/cache"
	"github.com/yigit/swimdesk/internal/pkg/events"
	"github.com/yigit/swimdesk/internal/pkg/helpers"
)

var testLogger = zerolog.Nop()

type fakeTx struct{ calls int }

func (f *fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

// ---- offerings

type fakeOfferingStore struct {
	nextID    int64
	offerings map[int64]*models.Offering
}

func newFakeOfferingStore() *fakeOfferingStore {
	return &fakeOfferingStore{offerings: map[int64]*models.Offering{}}
}

func (f *fakeOfferingStore) add(o *models.Offering) *models.Offering {
	_ = f.Create(context.Background(), o)
	return o
}

func (f *fakeOfferingStore) Create(_ context.Context, o *models.Offering) error {
	f.nextID++
	o.ID = f.nextID
	cp := *o
	f.offerings[o.ID] = &cp
	return nil
}

func (f *fakeOfferingStore) GetByID(_ context.Context, id int64) (*models.Offering, error) {
	o, ok := f.offerings[id]
	if !ok {
		return nil, apperrors.ErrOfferingNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOfferingStore) List(_ context.Context, activeOnly bool, offset uint64, limit int) ([]*models.Offering, int64, error) {
	var all []*models.Offering
	for _, o := range f.offerings {
		if !activeOnly || o.IsActive {
			cp := *o
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (f *fakeOfferingStore) Update(_ context.Context, o *models.Offering) error {
	if _, ok := f.offerings[o.ID]; !ok {
		return apperrors.ErrOfferingNotFound
	}
	cp := *o
	f.offerings[o.ID] = &cp
	return nil
}

func (f *fakeOfferingStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.offerings[id]; !ok {
		return apperrors.ErrOfferingNotFound
	}
	delete(f.offerings, id)
	return nil
}

// ---- instructors

type fakeInstructorStore struct {
	nextID      int64
	instructors map[int64]*models.Instructor
}

func newFakeInstructorStore() *fakeInstructorStore {
	return &fakeInstructorStore{instructors: map[int64]*models.Instructor{}}
}

func (f *fakeInstructorStore) add(first, last string) *models.Instructor {
	i := &models.Instructor{FirstName: first, LastName: last, Email: strings.ToLower(first) + "@swim.test", IsActive: true}
	_ = f.Create(context.Background(), i)
	return i
}

func (f *fakeInstructorStore) Create(_ context.Context, i *models.Instructor) error {
	f.nextID++
	i.ID = f.nextID
	cp := *i
	f.instructors[i.ID] = &cp
	return nil
}

func (f *fakeInstructorStore) GetByID(_ context.Context, id int64) (*models.Instructor, error) {
	i, ok := f.instructors[id]
	if !ok {
		return nil, apperrors.ErrInstructorNotFound
	}
	cp := *i
	return &cp, nil
}

func (f *fakeInstructorStore) List(_ context.Context, activeOnly bool) ([]*models.Instructor, error) {
	var out []*models.Instructor
	for _, i := range f.instructors {
		if !activeOnly || i.IsActive {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (f *fakeInstructorStore) GetByIDs(_ context.Context, ids []int64) ([]*models.Instructor, error) {
	seen := map[int64]bool{}
	var out []*models.Instructor
	for _, id := range ids {
		if i, ok := f.instructors[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeInstructorStore) Update(_ context.Context, i *models.Instructor) error {
	cp := *i
	f.instructors[i.ID] = &cp
	return nil
}

func (f *fakeInstructorStore) Delete(_ context.Context, id int64) error {
	delete(f.instructors, id)
	return nil
}

// ---- swimmers

type fakeSwimmerStore struct {
	nextID   int64
	swimmers map[int64]*models.Swimmer
}

func newFakeSwimmerStore() *fakeSwimmerStore {
	return &fakeSwimmerStore{swimmers: map[int64]*models.Swimmer{}}
}

func (f *fakeSwimmerStore) add(first, last string) *models.Swimmer {
	s := &models.Swimmer{FirstName: first, LastName: last}
	_ = f.Create(context.Background(), s)
	return s
}

func (f *fakeSwimmerStore) Create(_ context.Context, s *models.Swimmer) error {
	f.nextID++
	s.ID = f.nextID
	cp := *s
	f.swimmers[s.ID] = &cp
	return nil
}

func (f *fakeSwimmerStore) GetByID(_ context.Context, id int64) (*models.Swimmer, error) {
	s, ok := f.swimmers[id]
	if !ok {
		return nil, apperrors.ErrSwimmerNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSwimmerStore) List(_ context.Context, search string, offset uint64, limit int) ([]*models.Swimmer, int64, error) {
	var all []*models.Swimmer
	for _, s := range f.swimmers {
		if search == "" || strings.Contains(strings.ToLower(s.FullName()), strings.ToLower(search)) {
			all = append(all, s)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (f *fakeSwimmerStore) Update(_ context.Context, s *models.Swimmer) error {
	cp := *s
	f.swimmers[s.ID] = &cp
	return nil
}

func (f *fakeSwimmerStore) Delete(_ context.Context, id int64) error {
	delete(f.swimmers, id)
	return nil
}

// ---- sessions

type fakeSessionStore struct {
	nextID      int64
	sessions    map[int64]*models.Session
	assigned    map[int64][]int64
	offerings   *fakeOfferingStore
	instructors *fakeInstructorStore
	locked      []int64
}

func newFakeSessionStore(offerings *fakeOfferingStore, instructors *fakeInstructorStore) *fakeSessionStore {
	return &fakeSessionStore{
		sessions:    map[int64]*models.Session{},
		assigned:    map[int64][]int64{},
		offerings:   offerings,
		instructors: instructors,
	}
}

func (f *fakeSessionStore) add(offeringID int64, startsAt time.Time, override *float64, instructorIDs ...int64) *models.Session {
	s := &models.Session{OfferingID: offeringID, StartsAt: startsAt, DurationMinutes: 30, CapacityOverride: override}
	_ = f.Create(context.Background(), s)
	_ = f.ReplaceInstructors(context.Background(), s.ID, instructorIDs)
	return s
}

func (f *fakeSessionStore) Create(_ context.Context, s *models.Session) error {
	if _, ok := f.offerings.offerings[s.OfferingID]; !ok {
		return apperrors.ErrOfferingNotFound
	}
	f.nextID++
	s.ID = f.nextID
	cp := *s
	cp.Offering = nil
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessionStore) withOffering(s *models.Session) *models.Session {
	cp := *s
	if o, ok := f.offerings.offerings[s.OfferingID]; ok {
		oc := *o
		cp.Offering = &oc
	}
	return &cp
}

func (f *fakeSessionStore) GetByID(_ context.Context, id int64) (*models.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return f.withOffering(s), nil
}

func (f *fakeSessionStore) LockByID(_ context.Context, id int64) error {
	if _, ok := f.sessions[id]; !ok {
		return apperrors.ErrSessionNotFound
	}
	f.locked = append(f.locked, id)
	return nil
}

func (f *fakeSessionStore) List(_ context.Context, filter dto.SessionFilter, offset uint64, limit int) ([]*models.Session, int64, error) {
	var all []*models.Session
	for _, s := range f.sessions {
		if filter.From != nil && s.StartsAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !s.StartsAt.Before(*filter.To) {
			continue
		}
		if filter.OfferingID != nil && s.OfferingID != *filter.OfferingID {
			continue
		}
		all = append(all, f.withOffering(s))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].StartsAt.Equal(all[j].StartsAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].StartsAt.Before(all[j].StartsAt)
	})
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (f *fakeSessionStore) Update(_ context.Context, s *models.Session) error {
	if _, ok := f.sessions[s.ID]; !ok {
		return apperrors.ErrSessionNotFound
	}
	cp := *s
	cp.Offering = nil
	cp.Instructors = nil
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessionStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.sessions[id]; !ok {
		return apperrors.ErrSessionNotFound
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionStore) ReplaceInstructors(_ context.Context, sessionID int64, ids []int64) error {
	for _, id := range ids {
		if _, ok := f.instructors.instructors[id]; !ok {
			return apperrors.ErrInstructorNotFound
		}
	}
	f.assigned[sessionID] = append([]int64(nil), ids...)
	return nil
}

func (f *fakeSessionStore) InstructorsBySession(_ context.Context, sessionIDs []int64) (map[int64][]*models.Instructor, error) {
	out := map[int64][]*models.Instructor{}
	for _, sid := range sessionIDs {
		for _, iid := range f.assigned[sid] {
			out[sid] = append(out[sid], f.instructors.instructors[iid])
		}
	}
	return out, nil
}

// ---- enrollments

type fakeEnrollmentStore struct {
	nextID      int64
	nextSkipID  int64
	enrollments map[int64]*models.Enrollment
	skips       map[int64][]*models.EnrollmentSkip
	swimmers    *fakeSwimmerStore
	sessions    *fakeSessionStore
}

func newFakeEnrollmentStore(swimmers *fakeSwimmerStore, sessions *fakeSessionStore) *fakeEnrollmentStore {
	return &fakeEnrollmentStore{
		enrollments: map[int64]*models.Enrollment{},
		skips:       map[int64][]*models.EnrollmentSkip{},
		swimmers:    swimmers,
		sessions:    sessions,
	}
}

func (f *fakeEnrollmentStore) add(sessionID, swimmerID int64, ratio string) *models.Enrollment {
	e := &models.Enrollment{SessionID: sessionID, SwimmerID: swimmerID, Status: models.EnrollmentActive}
	if ratio != "" {
		e.ClassRatio = &ratio
	}
	if err := f.Create(context.Background(), e); err != nil {
		panic(err)
	}
	return e
}

func (f *fakeEnrollmentStore) Create(_ context.Context, e *models.Enrollment) error {
	for _, other := range f.enrollments {
		if other.IsActive() && other.SessionID == e.SessionID && other.SwimmerID == e.SwimmerID {
			return apperrors.ErrAlreadyEnrolled
		}
	}
	if e.Status == "" {
		e.Status = models.EnrollmentActive
	}
	f.nextID++
	e.ID = f.nextID
	e.CreatedAt = time.Now()
	cp := *e
	f.enrollments[e.ID] = &cp
	return nil
}

func (f *fakeEnrollmentStore) GetByID(_ context.Context, id int64) (*models.Enrollment, error) {
	e, ok := f.enrollments[id]
	if !ok {
		return nil, apperrors.ErrEnrollmentNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEnrollmentStore) List(_ context.Context, filter dto.EnrollmentFilter, offset uint64, limit int) ([]*models.Enrollment, int64, error) {
	var all []*models.Enrollment
	for _, e := range f.enrollments {
		if filter.SessionID != nil && e.SessionID != *filter.SessionID {
			continue
		}
		if filter.SwimmerID != nil && e.SwimmerID != *filter.SwimmerID {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (f *fakeEnrollmentStore) UpdateStatus(_ context.Context, id int64, status models.EnrollmentStatus) error {
	e, ok := f.enrollments[id]
	if !ok || !e.IsActive() {
		return apperrors.ErrEnrollmentNotActive
	}
	e.Status = status
	return nil
}

func (f *fakeEnrollmentStore) ActiveBySessions(_ context.Context, sessionIDs []int64) (map[int64][]*models.RosterEnrollment, error) {
	wanted := map[int64]bool{}
	for _, id := range sessionIDs {
		wanted[id] = true
	}
	ids := make([]int64, 0, len(f.enrollments))
	for id := range f.enrollments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := map[int64][]*models.RosterEnrollment{}
	for _, id := range ids {
		e := f.enrollments[id]
		if !e.IsActive() || !wanted[e.SessionID] {
			continue
		}
		re := &models.RosterEnrollment{
			EnrollmentID: e.ID,
			SessionID:    e.SessionID,
			SwimmerID:    e.SwimmerID,
			ClassRatio:   e.ClassRatio,
		}
		if sw, ok := f.swimmers.swimmers[e.SwimmerID]; ok {
			re.SwimmerFirstName, re.SwimmerLastName = sw.FirstName, sw.LastName
		}
		out[e.SessionID] = append(out[e.SessionID], re)
	}
	return out, nil
}

func (f *fakeEnrollmentStore) SkipDatesByEnrollments(_ context.Context, enrollmentIDs []int64) (map[int64]map[string]bool, error) {
	out := map[int64]map[string]bool{}
	for _, id := range enrollmentIDs {
		for _, k := range f.skips[id] {
			if out[id] == nil {
				out[id] = map[string]bool{}
			}
			out[id][k.SkipDate.Format(helpers.DateLayout)] = true
		}
	}
	return out, nil
}

func (f *fakeEnrollmentStore) CreateSkip(_ context.Context, skip *models.EnrollmentSkip) error {
	for _, k := range f.skips[skip.EnrollmentID] {
		if k.SkipDate.Equal(skip.SkipDate) {
			return apperrors.ErrSkipAlreadyRecorded
		}
	}
	f.nextSkipID++
	skip.ID = f.nextSkipID
	f.skips[skip.EnrollmentID] = append(f.skips[skip.EnrollmentID], skip)
	return nil
}

func (f *fakeEnrollmentStore) ListSkips(_ context.Context, enrollmentID int64) ([]*models.EnrollmentSkip, error) {
	return f.skips[enrollmentID], nil
}

// ---- payments

type fakePaymentStore struct {
	nextID   int64
	payments map[int64]*models.Payment
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: map[int64]*models.Payment{}}
}

func (f *fakePaymentStore) Create(_ context.Context, p *models.Payment) error {
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.payments[p.ID] = &cp
	return nil
}

func (f *fakePaymentStore) GetByID(_ context.Context, id int64) (*models.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, apperrors.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePaymentStore) List(_ context.Context, filter dto.PaymentFilter) ([]*models.Payment, error) {
	var out []*models.Payment
	for _, p := range f.payments {
		if filter.EnrollmentID != nil && p.EnrollmentID != *filter.EnrollmentID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakePaymentStore) MarkRefunded(_ context.Context, id int64, at time.Time) error {
	p, ok := f.payments[id]
	if !ok {
		return apperrors.ErrPaymentNotFound
	}
	if p.RefundedAt != nil {
		return apperrors.ErrAlreadyRefunded
	}
	p.RefundedAt = &at
	return nil
}

func (f *fakePaymentStore) SumPaid(_ context.Context, enrollmentID int64) (int64, error) {
	var total int64
	for _, p := range f.payments {
		if p.EnrollmentID == enrollmentID && p.RefundedAt == nil {
			total += p.AmountCents
		}
	}
	return total, nil
}

// ---- users and tokens

type fakeUserStore struct {
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[int64]*models.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, u *models.User) error {
	for _, other := range f.users {
		if other.Email == u.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeUserStore) UpdateLastLogin(_ context.Context, userID int64) error {
	if u, ok := f.users[userID]; ok {
		now := time.Now()
		u.LastLoginAt = &now
	}
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, userID int64, hash string) error {
	u, ok := f.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Password = hash
	return nil
}

func (f *fakeUserStore) List(_ context.Context, offset uint64, limit int) ([]*models.User, int64, error) {
	var all []*models.User
	for _, u := range f.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, offset, limit), int64(len(all)), nil
}

type fakeToken struct {
	userID  int64
	expiry  time.Time
	revoked bool
}

type fakeTokenStore struct {
	tokens map[string]*fakeToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: map[string]*fakeToken{}}
}

func (f *fakeTokenStore) CreateToken(_ context.Context, token string, userID int64, expiry time.Time) error {
	f.tokens[token] = &fakeToken{userID: userID, expiry: expiry}
	return nil
}

func (f *fakeTokenStore) GetTokenByValue(_ context.Context, token string) (int64, time.Time, error) {
	t, ok := f.tokens[token]
	switch {
	case !ok:
		return 0, time.Time{}, apperrors.ErrTokenNotFound
	case t.revoked:
		return 0, time.Time{}, apperrors.ErrTokenRevoked
	case t.expiry.Before(time.Now()):
		return 0, time.Time{}, apperrors.ErrTokenExpired
	}
	return t.userID, t.expiry, nil
}

func (f *fakeTokenStore) RevokeToken(_ context.Context, token string) error {
	t, ok := f.tokens[token]
	if !ok || t.revoked {
		return apperrors.ErrTokenRevoked
	}
	t.revoked = true
	return nil
}

func (f *fakeTokenStore) RevokeAllUserTokens(_ context.Context, userID int64) error {
	for _, t := range f.tokens {
		if t.userID == userID {
			t.revoked = true
		}
	}
	return nil
}

// ---- side effects

type fakeUsageCache struct {
	entries     map[int64]domain.CapacityResult
	invalidated []int64
}

func newFakeUsageCache() *fakeUsageCache {
	return &fakeUsageCache{entries: map[int64]domain.CapacityResult{}}
}

func (f *fakeUsageCache) GetUsage(_ context.Context, id int64) (*domain.CapacityResult, error) {
	u, ok := f.entries[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return &u, nil
}

func (f *fakeUsageCache) SetUsage(_ context.Context, id int64, usage domain.CapacityResult) error {
	f.entries[id] = usage
	return nil
}

func (f *fakeUsageCache) InvalidateUsage(_ context.Context, ids ...int64) error {
	for _, id := range ids {
		delete(f.entries, id)
	}
	f.invalidated = append(f.invalidated, ids...)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.EnrollmentEvent
	err    error
}

func (f *fakePublisher) PublishEnrollment(_ context.Context, evt events.EnrollmentEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, evt)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeNotifier struct {
	pushed map[int64]domain.CapacityResult
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{pushed: map[int64]domain.CapacityResult{}}
}

func (f *fakeNotifier) BroadcastUsage(sessionID int64, usage domain.CapacityResult) {
	f.pushed[sessionID] = usage
}

func paginate[T any](all []T, offset uint64, limit int) []T {
	if int(offset) >= len(all) {
		return []T{}
	}
	end := int(offset) + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

// ---- fixture

type fixture struct {
	tx          *fakeTx
	offerings   *fakeOfferingStore
	instructors *fakeInstructorStore
	swimmers    *fakeSwimmerStore
	sessions    *fakeSessionStore
	enrollments *fakeEnrollmentStore
	payments    *fakePaymentStore
	cache       *fakeUsageCache
	publisher   *fakePublisher
	notifier    *fakeNotifier
}

func newFixture() *fixture {
	f := &fixture{
		tx:          &fakeTx{},
		offerings:   newFakeOfferingStore(),
		instructors: newFakeInstructorStore(),
		swimmers:    newFakeSwimmerStore(),
		payments:    newFakePaymentStore(),
		cache:       newFakeUsageCache(),
		publisher:   &fakePublisher{},
		notifier:    newFakeNotifier(),
	}
	f.sessions = newFakeSessionStore(f.offerings, f.instructors)
	f.enrollments = newFakeEnrollmentStore(f.swimmers, f.sessions)
	return f
}

func (f *fixture) enrollmentService() *EnrollmentService {
	return NewEnrollmentService(f.tx, f.sessions, f.swimmers, f.enrollments, f.payments,
		f.cache, f.publisher, f.notifier, domain.DefaultRatio, testLogger)
}

func (f *fixture) sessionService() *SessionService {
	return NewSessionService(f.tx, f.sessions, f.offerings, f.instructors, f.enrollments,
		f.cache, f.notifier, testLogger)
}

func (f *fixture) rosterService() *RosterService {
	return NewRosterService(f.sessions, f.enrollments, time.UTC, testLogger)
}

func (f *fixture) offering(title string, capacity float64, ratio string) *models.Offering {
	return f.offerings.add(&models.Offering{
		Title:             title,
		DefaultClassRatio: ratio,
		BaseCapacity:      capacity,
		PriceCents:        12000,
		IsActive:          true,
	})
}
