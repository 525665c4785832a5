package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/pkg/apperrors"
	"github.com/yigit/swimdesk/internal/pkg/helpers"
)

func TestPayments(t *testing.T) {
	f := newFixture()
	o := f.offering("Beginner Swim", 6, "3:1")
	sess := f.sessions.add(o.ID, saturday, nil)
	e := f.enrollments.add(sess.ID, f.swimmers.add("Ada", "Yilmaz").ID, "3:1")

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewPaymentService(f.payments, f.enrollments, testLogger)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	p, err := svc.RecordPayment(ctx, 5, &dto.PaymentRequest{
		EnrollmentID: e.ID,
		AmountCents:  4000,
		Method:       models.PaymentCard,
		Reference:    helpers.Ptr(" "),
	})
	require.NoError(t, err)
	assert.Equal(t, fixed, p.PaidAt)
	assert.Nil(t, p.Reference)
	require.NotNil(t, p.RecordedBy)
	assert.Equal(t, int64(5), *p.RecordedBy)

	_, err = svc.RecordPayment(ctx, 5, &dto.PaymentRequest{EnrollmentID: 999, AmountCents: 100, Method: models.PaymentCash})
	assert.ErrorIs(t, err, apperrors.ErrEnrollmentNotFound)

	_, err = svc.RecordPayment(ctx, 5, &dto.PaymentRequest{EnrollmentID: e.ID, AmountCents: 100, Method: "CHEQUE"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	refunded, err := svc.RefundPayment(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, refunded.RefundedAt)
	assert.Equal(t, fixed, *refunded.RefundedAt)

	_, err = svc.RefundPayment(ctx, p.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyRefunded)

	list, err := svc.ListPayments(ctx, dto.PaymentFilter{EnrollmentID: &e.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
