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
	"github.com/yigit/swimdesk/internal/db"
	"github.com/yigit/swimdesk/internal/pkg/apperrors"
	"github.com/yigit/swimdesk/internal/pkg/dberrors"
	"github.com/yigit/swimdesk/internal/pkg/logger"
)

var offeringColumns = []string{
	"id", "title", "notes", "level", "default_class_ratio", "base_capacity",
	"price_cents", "is_active", "created_at", "updated_at",
}

// OfferingRepository handles offering database operations
type OfferingRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewOfferingRepository creates a new OfferingRepository
func NewOfferingRepository(db *pgxpool.Pool) *OfferingRepository {
	return &OfferingRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func scanOffering(row pgx.Row) (*models.Offering, error) {
	o := &models.Offering{}
	err := row.Scan(&o.ID, &o.Title, &o.Notes, &o.Level, &o.DefaultClassRatio, &o.BaseCapacity,
		&o.PriceCents, &o.IsActive, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// Create inserts an offering
func (r *OfferingRepository) Create(ctx context.Context, o *models.Offering) error {
	sql, args, err := r.sb.Insert("offerings").
		Columns("title", "notes", "level", "default_class_ratio", "base_capacity", "price_cents", "is_active").
		Values(o.Title, o.Notes, o.Level, o.DefaultClassRatio, o.BaseCapacity, o.PriceCents, o.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create offering SQL")
		return fmt.Errorf("failed to build create offering query: %w", err)
	}

	if err := db.Conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if dberrors.IsCheckViolation(err) {
			return fmt.Errorf("%w: offering violates a constraint", apperrors.ErrValidationFailed)
		}
		logger.Error().Err(err).Msg("Error executing create offering query")
		return fmt.Errorf("error creating offering: %w", err)
	}
	return nil
}

// GetByID retrieves an offering by ID
func (r *OfferingRepository) GetByID(ctx context.Context, id int64) (*models.Offering, error) {
	sql, args, err := r.sb.Select(offeringColumns...).
		From("offerings").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get offering by ID SQL")
		return nil, fmt.Errorf("failed to build get offering query: %w", err)
	}

	o, err := scanOffering(db.Conn(ctx, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOfferingNotFound
		}
		logger.Error().Err(err).Int64("offeringID", id).Msg("Error scanning offering row")
		return nil, fmt.Errorf("error getting offering by ID: %w", err)
	}
	return o, nil
}

// List returns a page of offerings ordered by title, plus the total count
func (r *OfferingRepository) List(ctx context.Context, activeOnly bool, offset uint64, limit int) ([]*models.Offering, int64, error) {
	where := squirrel.And{}
	if activeOnly {
		where = append(where, squirrel.Eq{"is_active": true})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("offerings").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count offerings query: %w", err)
	}
	var total int64
	if err := db.Conn(ctx, r.db).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting offerings")
		return nil, 0, fmt.Errorf("error counting offerings: %w", err)
	}

	sql, args, err := r.sb.Select(offeringColumns...).
		From("offerings").
		Where(where).
		OrderBy("title ASC", "id ASC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list offerings SQL")
		return nil, 0, fmt.Errorf("failed to build list offerings query: %w", err)
	}

	rows, err := db.Conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list offerings query")
		return nil, 0, fmt.Errorf("error querying offerings: %w", err)
	}
	defer rows.Close()

	offerings := []*models.Offering{}
	for rows.Next() {
		o, err := scanOffering(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning offering row during list")
			return nil, 0, fmt.Errorf("error scanning offering row: %w", err)
		}
		offerings = append(offerings, o)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating offering rows")
		return nil, 0, fmt.Errorf("error iterating offering rows: %w", err)
	}
	return offerings, total, nil
}

// Update updates an existing offering
func (r *OfferingRepository) Update(ctx context.Context, o *models.Offering) error {
	now := time.Now()
	sql, args, err := r.sb.Update("offerings").
		SetMap(map[string]interface{}{
			"title":               o.Title,
			"notes":               o.Notes,
			"level":               o.Level,
			"default_class_ratio": o.DefaultClassRatio,
			"base_capacity":       o.BaseCapacity,
			"price_cents":         o.PriceCents,
			"is_active":           o.IsActive,
			"updated_at":          now,
		}).
		Where(squirrel.Eq{"id": o.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update offering SQL")
		return fmt.Errorf("failed to build update offering query: %w", err)
	}

	cmdTag, err := db.Conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("offeringID", o.ID).Msg("Error executing update offering query")
		return fmt.Errorf("error updating offering: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrOfferingNotFound
	}
	o.UpdatedAt = now
	return nil
}

// Delete deletes an offering that has no sessions
func (r *OfferingRepository) Delete(ctx context.Context, id int64) error {
	var hasSessions bool
	checkSQL, checkArgs, err := r.sb.Select("1").
		From("sessions").
		Where(squirrel.Eq{"offering_id": id}).
		Prefix("SELECT EXISTS (").Suffix(")").
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building check sessions SQL")
		return fmt.Errorf("failed to build check sessions query: %w", err)
	}

	if err := db.Conn(ctx, r.db).QueryRow(ctx, checkSQL, checkArgs...).Scan(&hasSessions); err != nil {
		logger.Error().Err(err).Int64("offeringID", id).Msg("Error checking offering sessions")
		return fmt.Errorf("error checking offering sessions: %w", err)
	}
	if hasSessions {
		return apperrors.ErrOfferingHasSession
	}

	sql, args, err := r.sb.Delete("offerings").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete offering query: %w", err)
	}

	cmdTag, err := db.Conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		// A session created between the check and the delete still trips the FK
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrOfferingHasSession
		}
		logger.Error().Err(err).Int64("offeringID", id).Msg("Error executing delete offering query")
		return fmt.Errorf("error deleting offering: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrOfferingNotFound
	}
	return nil
}
