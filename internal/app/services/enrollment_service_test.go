package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/pkg/apperrors"
	"github.com/yigit/swimdesk/internal/pkg/events"
	"github.com/yigit/swimdesk/internal/pkg/helpers"
)

var saturday = time.Date(2025, 6, 7, 9, 0, 0, 0, time.UTC)

func TestEnroll_UsesOfferingDefaultRatio(t *testing.T) {
	f := newFixture()
	o := f.offering("Beginner Swim", 6, "2:1")
	sess := f.sessions.add(o.ID, saturday, nil)
	sw := f.swimmers.add("Ada", "Yilmaz")

	e, err := f.enrollmentService().Enroll(context.Background(), 9, &dto.EnrollRequest{SessionID: sess.ID, SwimmerID: sw.ID})
	require.NoError(t, err)

	assert.Equal(t, "2:1", *e.ClassRatio)
	assert.Equal(t, models.EnrollmentActive, e.Status)
	assert.Equal(t, []int64{sess.ID}, f.sessions.locked)
	assert.Equal(t, 1, f.tx.calls)

	require.Len(t, f.publisher.events, 1)
	evt := f.publisher.events[0]
	assert.Equal(t, events.KeyEnrollmentCreated, evt.Type)
	assert.Equal(t, int64(9), evt.ActorID)
	require.NotNil(t, evt.Usage)
	assert.Equal(t, 1.5, evt.Usage.Filled)

	assert.Contains(t, f.cache.invalidated, sess.ID)
	assert.Equal(t, 1.5, f.notifier.pushed[sess.ID].Filled)
	assert.Equal(t, 4, f.notifier.pushed[sess.ID].OpenSeats)
}

func TestEnroll_BlankRatioTakesOfferingDefault(t *testing.T) {
	f := newFixture()
	o := f.offering("Stroke Clinic", 6, "1:1")
	sess := f.sessions.add(o.ID, saturday, nil)
	sw := f.swimmers.add("Deniz", "Kaya")

	e, err := f.enrollmentService().Enroll(context.Background(), 9, &dto.EnrollRequest{SessionID: sess.ID, SwimmerID: sw.ID, ClassRatio: helpers.Ptr("  ")})
	require.NoError(t, err)
	require.NotNil(t, e.ClassRatio)
	assert.Equal(t, "1:1", *e.ClassRatio)
}

func TestEnroll_CapacityRule(t *testing.T) {
	tests := []struct {
		name        string
		capacity    float64
		instructors int
		existing    []string
		candidate   string
		wantErr     error
	}{
		{name: "fits", capacity: 3, existing: []string{"3:1"}, candidate: "2:1"},
		{name: "exactly full is accepted", capacity: 3, existing: nil, candidate: "1:1"},
		{name: "private lesson overflows", capacity: 3, existing: []string{"3:1", "2:1"}, candidate: "1:1", wantErr: apperrors.ErrClassFull},
		{name: "over by a group seat", capacity: 3, existing: []string{"1:1"}, candidate: "3:1", wantErr: apperrors.ErrClassFull},
		{name: "two instructors raise capacity to five", capacity: 3, instructors: 2, existing: []string{"1:1"}, candidate: "2:1"},
		{name: "dynamic minimum still has a ceiling", capacity: 3, instructors: 2, existing: []string{"1:1", "2:1"}, candidate: "3:1", wantErr: apperrors.ErrClassFull},
		{name: "zero capacity rejects everything", capacity: 0, candidate: "3:1", wantErr: apperrors.ErrClassFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			o := f.offering("Group", tt.capacity, "3:1")
			var instructorIDs []int64
			for i := 0; i < tt.instructors; i++ {
				instructorIDs = append(instructorIDs, f.instructors.add("Coach", "Number").ID)
			}
			sess := f.sessions.add(o.ID, saturday, nil, instructorIDs...)
			for _, ratio := range tt.existing {
				sw := f.swimmers.add("Existing", ratio)
				f.enrollments.add(sess.ID, sw.ID, ratio)
			}
			candidate := f.swimmers.add("New", "Swimmer")

			_, err := f.enrollmentService().Enroll(context.Background(), 1, &dto.EnrollRequest{
				SessionID:  sess.ID,
				SwimmerID:  candidate.ID,
				ClassRatio: helpers.Ptr(tt.candidate),
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Len(t, f.enrollments.enrollments, len(tt.existing))
				assert.Empty(t, f.publisher.events)
				return
			}
			require.NoError(t, err)
			assert.Len(t, f.enrollments.enrollments, len(tt.existing)+1)
		})
	}
}

func TestEnroll_Rejections(t *testing.T) {
	f := newFixture()
	o := f.offering("Beginner Swim", 6, "3:1")
	sess := f.sessions.add(o.ID, saturday, nil)
	sw := f.swimmers.add("Ada", "Yilmaz")
	svc := f.enrollmentService()
	ctx := context.Background()

	_, err := svc.Enroll(ctx, 1, &dto.EnrollRequest{SessionID: sess.ID, SwimmerID: sw.ID})
	require.NoError(t, err)

	_, err = svc.Enroll(ctx, 1, &dto.EnrollRequest{SessionID: sess.ID, SwimmerID: sw.ID})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyEnrolled)

	_, err = svc.Enroll(ctx, 1, &dto.EnrollRequest{SessionID: sess.ID, SwimmerID: 999})
	assert.ErrorIs(t, err, apperrors.ErrSwimmerNotFound)

	_, err = svc.Enroll(ctx, 1, &dto.EnrollRequest{SessionID: 999, SwimmerID: sw.ID})
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	other := f.swimmers.add("Bob", "Kaya")
	_, err = svc.Enroll(ctx, 1, &dto.EnrollRequest{SessionID: sess.ID, SwimmerID: other.ID, ClassRatio: helpers.Ptr("4:1")})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestEnroll_PublishFailureDoesNotFailEnrollment(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("broker down")
	o := f.offering("Beginner Swim", 6, "3:1")
	sess := f.sessions.add(o.ID, saturday, nil)
	sw := f.swimmers.add("Ada", "Yilmaz")

	e, err := f.enrollmentService().Enroll(context.Background(), 1, &dto.EnrollRequest{SessionID: sess.ID, SwimmerID: sw.ID})
	require.NoError(t, err)
	assert.NotZero(t, e.ID)
	assert.Equal(t, 1.0, f.notifier.pushed[sess.ID].Filled)
}

func TestTransfer_MovesSeatBetweenSessions(t *testing.T) {
	f := newFixture()
	o := f.offering("Beginner Swim", 6, "3:1")
	from := f.sessions.add(o.ID, saturday, nil)
	to := f.sessions.add(o.ID, saturday.AddDate(0, 0, 7), nil)
	sw := f.swimmers.add("Ada", "Yilmaz")
	original := f.enrollments.add(from.ID, sw.ID, "2:1")

	resp, err := f.enrollmentService().Transfer(context.Background(), 3, original.ID, &dto.TransferRequest{
		TargetSessionID: to.ID,
		Reason:          helpers.Ptr("moved to next week"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.EnrollmentTransferred, resp.From.Status)
	assert.Equal(t, models.EnrollmentTransferred, f.enrollments.enrollments[original.ID].Status)
	assert.Equal(t, to.ID, resp.To.SessionID)
	assert.Equal(t, models.EnrollmentActive, resp.To.Status)
	require.NotNil(t, resp.To.TransferredFromID)
	assert.Equal(t, original.ID, *resp.To.TransferredFromID)
	assert.Equal(t, "2:1", *resp.To.ClassRatio)
	assert.Equal(t, "moved to next week", *resp.To.Notes)

	assert.Equal(t, []int64{from.ID, to.ID}, f.sessions.locked)
	assert.ElementsMatch(t, []int64{from.ID, to.ID}, f.cache.invalidated)
	assert.Equal(t, 0.0, f.notifier.pushed[from.ID].Filled)
	assert.Equal(t, 1.5, f.notifier.pushed[to.ID].Filled)

	require.Len(t, f.publisher.events, 1)
	evt := f.publisher.events[0]
	assert.Equal(t, events.KeyEnrollmentTransferred, evt.Type)
	require.NotNil(t, evt.FromSession)
	assert.Equal(t, from.ID, *evt.FromSession)
}

func TestTransfer_LocksInIDOrder(t *testing.T) {
	f := newFixture()
	o := f.offering("Beginner Swim", 6, "3:1")
	low := f.sessions.add(o.ID, saturday, nil)
	high := f.sessions.add(o.ID, saturday.AddDate(0, 0, 7), nil)
	sw := f.swimmers.add("Ada", "Yilmaz")
	e := f.enrollments.add(high.ID, sw.ID, "3:1")

	_, err := f.enrollmentService().Transfer(context.Background(), 1, e.ID, &dto.TransferRequest{TargetSessionID: low.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{low.ID, high.ID}, f.sessions.locked)
}

func TestTransfer_Rejections(t *testing.T) {
	f := newFixture()
	o := f.offering("Beginner Swim", 6, "3:1")
	full := f.offering("Private", 3, "1:1")
	from := f.sessions.add(o.ID, saturday, nil)
	target := f.sessions.add(full.ID, saturday.AddDate(0, 0, 1), nil)
	f.enrollments.add(target.ID, f.swimmers.add("Taken", "Seat").ID, "1:1")

	sw := f.swimmers.add("Ada", "Yilmaz")
	e := f.enrollments.add(from.ID, sw.ID, "3:1")
	svc := f.enrollmentService()
	ctx := context.Background()

	_, err := svc.Transfer(ctx, 1, e.ID, &dto.TransferRequest{TargetSessionID: from.ID})
	assert.ErrorIs(t, err, apperrors.ErrSameSession)

	_, err = svc.Transfer(ctx, 1, e.ID, &dto.TransferRequest{TargetSessionID: target.ID})
	assert.ErrorIs(t, err, apperrors.ErrClassFull)
	assert.True(t, f.enrollments.enrollments[e.ID].IsActive())

	_, err = svc.Transfer(ctx, 1, e.ID, &dto.TransferRequest{TargetSessionID: 999})
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	_, err = svc.Cancel(ctx, 1, e.ID)
	require.NoError(t, err)
	other := f.sessions.add(o.ID, saturday.AddDate(0, 0, 2), nil)
	_, err = svc.Transfer(ctx, 1, e.ID, &dto.TransferRequest{TargetSessionID: other.ID})
	assert.ErrorIs(t, err, apperrors.ErrEnrollmentNotActive)
}

func TestCancel(t *testing.T) {
	f := newFixture()
	o := f.offering("Beginner Swim", 6, "3:1")
	sess := f.sessions.add(o.ID, saturday, nil)
	e := f.enrollments.add(sess.ID, f.swimmers.add("Ada", "Yilmaz").ID, "1:1")
	svc := f.enrollmentService()

	canceled, err := svc.Cancel(context.Background(), 1, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentCanceled, canceled.Status)
	assert.Equal(t, 0.0, f.notifier.pushed[sess.ID].Filled)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, events.KeyEnrollmentCanceled, f.publisher.events[0].Type)

	_, err = svc.Cancel(context.Background(), 1, e.ID)
	assert.ErrorIs(t, err, apperrors.ErrEnrollmentNotActive)

	_, err = svc.Cancel(context.Background(), 1, 999)
	assert.ErrorIs(t, err, apperrors.ErrEnrollmentNotFound)
}

func TestRecordSkip(t *testing.T) {
	f := newFixture()
	o := f.offering("Beginner Swim", 6, "3:1")
	sess := f.sessions.add(o.ID, saturday, nil)
	e := f.enrollments.add(sess.ID, f.swimmers.add("Ada", "Yilmaz").ID, "3:1")
	svc := f.enrollmentService()
	ctx := context.Background()

	skip, err := svc.RecordSkip(ctx, e.ID, &dto.SkipRequest{Date: "2025-06-14", Reason: helpers.Ptr("  holiday ")})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC), skip.SkipDate)
	assert.Equal(t, "holiday", *skip.Reason)

	_, err = svc.RecordSkip(ctx, e.ID, &dto.SkipRequest{Date: "2025-06-14"})
	assert.ErrorIs(t, err, apperrors.ErrSkipAlreadyRecorded)

	_, err = svc.RecordSkip(ctx, e.ID, &dto.SkipRequest{Date: "14/06/2025"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	skips, err := svc.ListSkips(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, skips, 1)

	_, err = svc.Cancel(ctx, 1, e.ID)
	require.NoError(t, err)
	_, err = svc.RecordSkip(ctx, e.ID, &dto.SkipRequest{Date: "2025-06-21"})
	assert.ErrorIs(t, err, apperrors.ErrEnrollmentNotActive)
}

func TestListEnrollments_FiltersByStatus(t *testing.T) {
	f := newFixture()
	o := f.offering("Beginner Swim", 6, "3:1")
	sess := f.sessions.add(o.ID, saturday, nil)
	a := f.enrollments.add(sess.ID, f.swimmers.add("Ada", "Yilmaz").ID, "3:1")
	f.enrollments.add(sess.ID, f.swimmers.add("Bob", "Kaya").ID, "3:1")
	require.NoError(t, f.enrollments.UpdateStatus(context.Background(), a.ID, models.EnrollmentCanceled))

	active := models.EnrollmentActive
	resp, err := f.enrollmentService().ListEnrollments(context.Background(), dto.EnrollmentFilter{Status: &active}, 1, 10)
	require.NoError(t, err)

	items := resp.Items.([]*models.Enrollment)
	require.Len(t, items, 1)
	assert.Equal(t, "Bob", f.swimmers.swimmers[items[0].SwimmerID].FirstName)
	assert.Equal(t, int64(1), resp.Pagination.TotalItems)
}

func TestGetBalance(t *testing.T) {
	f := newFixture()
	o := f.offering("Beginner Swim", 6, "3:1")
	sess := f.sessions.add(o.ID, saturday, nil)
	e := f.enrollments.add(sess.ID, f.swimmers.add("Ada", "Yilmaz").ID, "3:1")
	ctx := context.Background()

	require.NoError(t, f.payments.Create(ctx, &models.Payment{EnrollmentID: e.ID, AmountCents: 5000}))
	refunded := &models.Payment{EnrollmentID: e.ID, AmountCents: 3000}
	require.NoError(t, f.payments.Create(ctx, refunded))
	require.NoError(t, f.payments.MarkRefunded(ctx, refunded.ID, time.Now()))

	balance, err := f.enrollmentService().GetBalance(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, &dto.BalanceResponse{EnrollmentID: e.ID, PriceCents: 12000, PaidCents: 5000, BalanceCents: 7000}, balance)
}
