package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/middleware"
)

// PaymentUseCase is what the payment endpoints need from the service layer
type PaymentUseCase interface {
	RecordPayment(ctx context.Context, actorID int64, req *dto.PaymentRequest) (*models.Payment, error)
	ListPayments(ctx context.Context, filter dto.PaymentFilter) ([]*models.Payment, error)
	RefundPayment(ctx context.Context, id int64) (*models.Payment, error)
}

// PaymentController handles payments against enrollments
type PaymentController struct {
	paymentService PaymentUseCase
	logger         zerolog.Logger
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(paymentService PaymentUseCase, logger zerolog.Logger) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		logger:         logger,
	}
}

// RecordPayment godoc
// @Summary Record a payment
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PaymentRequest true "Payment"
// @Success 201 {object} dto.APIResponse{data=models.Payment} "Payment recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Router /payments [post]
func (c *PaymentController) RecordPayment(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.PaymentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	payment, err := c.paymentService.RecordPayment(ctx.Request.Context(), actorID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Int64("paymentID", payment.ID).
		Int64("enrollmentID", payment.EnrollmentID).
		Int64("amountCents", payment.AmountCents).
		Msg("Payment recorded")
	respond(ctx, http.StatusCreated, "Payment recorded successfully", payment)
}

// ListPayments godoc
// @Summary List payments
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param enrollmentId query int false "Enrollment filter"
// @Param swimmerId query int false "Swimmer filter"
// @Success 200 {object} dto.APIResponse{data=[]models.Payment} "Payments"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /payments [get]
func (c *PaymentController) ListPayments(ctx *gin.Context) {
	var filter dto.PaymentFilter
	var ok bool
	if filter.EnrollmentID, ok = parseOptionalIDQuery(ctx, "enrollmentId"); !ok {
		return
	}
	if filter.SwimmerID, ok = parseOptionalIDQuery(ctx, "swimmerId"); !ok {
		return
	}

	payments, err := c.paymentService.ListPayments(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "", payments)
}

// RefundPayment godoc
// @Summary Refund a payment
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {object} dto.APIResponse{data=models.Payment} "Payment refunded"
// @Failure 404 {object} dto.ErrorResponse "Payment not found"
// @Failure 409 {object} dto.ErrorResponse "Already refunded"
// @Router /payments/{id}/refund [post]
func (c *PaymentController) RefundPayment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "payment")
	if !ok {
		return
	}

	payment, err := c.paymentService.RefundPayment(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Payment refunded successfully", payment)
}
