package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/pkg/apperrors"
	"github.com/yigit/swimdesk/internal/pkg/helpers"
)

// PaymentService records money received for enrollments
type PaymentService struct {
	paymentRepo    PaymentStore
	enrollmentRepo EnrollmentStore
	now            func() time.Time
	logger         zerolog.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(paymentRepo PaymentStore, enrollmentRepo EnrollmentStore, logger zerolog.Logger) *PaymentService {
	return &PaymentService{
		paymentRepo:    paymentRepo,
		enrollmentRepo: enrollmentRepo,
		now:            time.Now,
		logger:         logger,
	}
}

// RecordPayment stores a payment against an enrollment
func (s *PaymentService) RecordPayment(ctx context.Context, actorID int64, req *dto.PaymentRequest) (*models.Payment, error) {
	if req.AmountCents <= 0 {
		return nil, apperrors.NewBadRequestError("amountCents must be positive")
	}
	if !req.Method.IsValid() {
		return nil, apperrors.NewBadRequestError("unknown payment method")
	}
	if _, err := s.enrollmentRepo.GetByID(ctx, req.EnrollmentID); err != nil {
		return nil, err
	}

	paidAt := s.now().UTC()
	if req.PaidAt != nil {
		paidAt = req.PaidAt.UTC()
	}
	payment := &models.Payment{
		EnrollmentID: req.EnrollmentID,
		AmountCents:  req.AmountCents,
		Method:       req.Method,
		Reference:    helpers.NullIfBlank(req.Reference),
		PaidAt:       paidAt,
	}
	if actorID > 0 {
		payment.RecordedBy = &actorID
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}
	s.logger.Info().
		Int64("paymentID", payment.ID).
		Int64("enrollmentID", payment.EnrollmentID).
		Int64("amountCents", payment.AmountCents).
		Msg("Payment recorded")
	return payment, nil
}

// ListPayments returns payments filtered by enrollment or swimmer
func (s *PaymentService) ListPayments(ctx context.Context, filter dto.PaymentFilter) ([]*models.Payment, error) {
	return s.paymentRepo.List(ctx, filter)
}

// RefundPayment marks a payment refunded. A payment can be refunded once.
func (s *PaymentService) RefundPayment(ctx context.Context, id int64) (*models.Payment, error) {
	if err := s.paymentRepo.MarkRefunded(ctx, id, s.now().UTC()); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("paymentID", id).Msg("Payment refunded")
	return s.paymentRepo.GetByID(ctx, id)
}
