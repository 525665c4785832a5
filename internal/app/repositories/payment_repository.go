package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/app/models/dto"
	"github.com/yigit/swimdesk/internal/db"
	"github.com/yigit/swimdesk/internal/pkg/apperrors"
	"github.com/yigit/swimdesk/internal/pkg/dberrors"
	"github.com/yigit/swimdesk/internal/pkg/logger"
)

var paymentColumns = []string{
	"p.id", "p.enrollment_id", "p.amount_cents", "p.method", "p.reference",
	"p.paid_at", "p.refunded_at", "p.recorded_by", "p.created_at",
}

// PaymentRepository handles payment database operations
type PaymentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(&p.ID, &p.EnrollmentID, &p.AmountCents, &p.Method, &p.Reference,
		&p.PaidAt, &p.RefundedAt, &p.RecordedBy, &p.CreatedAt)
	return p, err
}

// Create inserts a payment
func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	sql, args, err := r.sb.Insert("payments").
		Columns("enrollment_id", "amount_cents", "method", "reference", "paid_at", "recorded_by").
		Values(p.EnrollmentID, p.AmountCents, p.Method, p.Reference, p.PaidAt, p.RecordedBy).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create payment SQL")
		return fmt.Errorf("failed to build create payment query: %w", err)
	}

	if err := db.Conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrEnrollmentNotFound
		}
		logger.Error().Err(err).Int64("enrollmentID", p.EnrollmentID).Msg("Error executing create payment query")
		return fmt.Errorf("error creating payment: %w", err)
	}
	return nil
}

// GetByID retrieves a payment by ID
func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*models.Payment, error) {
	sql, args, err := r.sb.Select(paymentColumns...).
		From("payments p").
		Where(squirrel.Eq{"p.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get payment query: %w", err)
	}

	p, err := scanPayment(db.Conn(ctx, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPaymentNotFound
		}
		logger.Error().Err(err).Int64("paymentID", id).Msg("Error scanning payment row")
		return nil, fmt.Errorf("error getting payment by ID: %w", err)
	}
	return p, nil
}

// List returns payments, newest first, filtered by enrollment or swimmer
func (r *PaymentRepository) List(ctx context.Context, filter dto.PaymentFilter) ([]*models.Payment, error) {
	q := r.sb.Select(paymentColumns...).From("payments p").OrderBy("p.paid_at DESC", "p.id DESC")
	if filter.EnrollmentID != nil {
		q = q.Where(squirrel.Eq{"p.enrollment_id": *filter.EnrollmentID})
	}
	if filter.SwimmerID != nil {
		q = q.Join("enrollments e ON e.id = p.enrollment_id").Where(squirrel.Eq{"e.swimmer_id": *filter.SwimmerID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list payments query: %w", err)
	}

	rows, err := db.Conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list payments query")
		return nil, fmt.Errorf("error querying payments: %w", err)
	}
	defer rows.Close()

	payments := []*models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning payment row: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment rows: %w", err)
	}
	return payments, nil
}

// MarkRefunded stamps refunded_at once; a second refund fails with ErrAlreadyRefunded
func (r *PaymentRepository) MarkRefunded(ctx context.Context, id int64, at time.Time) error {
	sql, args, err := r.sb.Update("payments").
		Set("refunded_at", at).
		Where(squirrel.Eq{"id": id, "refunded_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build refund payment query: %w", err)
	}

	cmdTag, err := db.Conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("paymentID", id).Msg("Error executing refund payment query")
		return fmt.Errorf("error refunding payment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return apperrors.ErrAlreadyRefunded
	}
	return nil
}

// SumPaid totals the non-refunded payments of an enrollment
func (r *PaymentRepository) SumPaid(ctx context.Context, enrollmentID int64) (int64, error) {
	sql, args, err := r.sb.Select("COALESCE(SUM(amount_cents), 0)").
		From("payments").
		Where(squirrel.Eq{"enrollment_id": enrollmentID, "refunded_at": nil}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build sum payments query: %w", err)
	}

	var total int64
	if err := db.Conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		logger.Error().Err(err).Int64("enrollmentID", enrollmentID).Msg("Error summing payments")
		return 0, fmt.Errorf("error summing payments: %w", err)
	}
	return total, nil
}
