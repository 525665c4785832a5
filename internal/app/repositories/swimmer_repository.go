package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/swimdesk/internal/app/models"
	"github.com/yigit/swimdesk/internal/db"
	"github.com/yigit/swimdesk/internal/pkg/apperrors"
	"github.com/yigit/swimdesk/internal/pkg/dberrors"
	"github.com/yigit/swimdesk/internal/pkg/logger"
)

var swimmerColumns = []string{
	"id", "first_name", "last_name", "birth_date", "guardian_name", "guardian_email",
	"guardian_phone", "level", "notes", "created_at",
}

// SwimmerRepository handles swimmer database operations
type SwimmerRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSwimmerRepository creates a new SwimmerRepository
func NewSwimmerRepository(db *pgxpool.Pool) *SwimmerRepository {
	return &SwimmerRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func scanSwimmer(row pgx.Row) (*models.Swimmer, error) {
	s := &models.Swimmer{}
	err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.BirthDate, &s.GuardianName, &s.GuardianEmail,
		&s.GuardianPhone, &s.Level, &s.Notes, &s.CreatedAt)
	return s, err
}

// Create inserts a swimmer
func (r *SwimmerRepository) Create(ctx context.Context, s *models.Swimmer) error {
	sql, args, err := r.sb.Insert("swimmers").
		Columns("first_name", "last_name", "birth_date", "guardian_name", "guardian_email", "guardian_phone", "level", "notes").
		Values(s.FirstName, s.LastName, s.BirthDate, s.GuardianName, s.GuardianEmail, s.GuardianPhone, s.Level, s.Notes).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create swimmer SQL")
		return fmt.Errorf("failed to build create swimmer query: %w", err)
	}

	if err := db.Conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&s.ID, &s.CreatedAt); err != nil {
		logger.Error().Err(err).Msg("Error executing create swimmer query")
		return fmt.Errorf("error creating swimmer: %w", err)
	}
	return nil
}

// GetByID retrieves a swimmer by ID
func (r *SwimmerRepository) GetByID(ctx context.Context, id int64) (*models.Swimmer, error) {
	sql, args, err := r.sb.Select(swimmerColumns...).
		From("swimmers").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get swimmer query: %w", err)
	}

	s, err := scanSwimmer(db.Conn(ctx, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSwimmerNotFound
		}
		logger.Error().Err(err).Int64("swimmerID", id).Msg("Error scanning swimmer row")
		return nil, fmt.Errorf("error getting swimmer by ID: %w", err)
	}
	return s, nil
}

// List returns a page of swimmers, optionally filtered by a name search, plus the total count
func (r *SwimmerRepository) List(ctx context.Context, search string, offset uint64, limit int) ([]*models.Swimmer, int64, error) {
	where := squirrel.And{}
	if term := strings.TrimSpace(search); term != "" {
		pattern := "%" + term + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"first_name": pattern},
			squirrel.ILike{"last_name": pattern},
			squirrel.ILike{"guardian_name": pattern},
		})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("swimmers").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count swimmers query: %w", err)
	}
	var total int64
	if err := db.Conn(ctx, r.db).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting swimmers")
		return nil, 0, fmt.Errorf("error counting swimmers: %w", err)
	}

	sql, args, err := r.sb.Select(swimmerColumns...).
		From("swimmers").
		Where(where).
		OrderBy("last_name ASC", "first_name ASC", "id ASC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list swimmers query: %w", err)
	}

	rows, err := db.Conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list swimmers query")
		return nil, 0, fmt.Errorf("error querying swimmers: %w", err)
	}
	defer rows.Close()

	swimmers := []*models.Swimmer{}
	for rows.Next() {
		s, err := scanSwimmer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning swimmer row: %w", err)
		}
		swimmers = append(swimmers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating swimmer rows: %w", err)
	}
	return swimmers, total, nil
}

// Update updates a swimmer
func (r *SwimmerRepository) Update(ctx context.Context, s *models.Swimmer) error {
	sql, args, err := r.sb.Update("swimmers").
		SetMap(map[string]interface{}{
			"first_name":     s.FirstName,
			"last_name":      s.LastName,
			"birth_date":     s.BirthDate,
			"guardian_name":  s.GuardianName,
			"guardian_email": s.GuardianEmail,
			"guardian_phone": s.GuardianPhone,
			"level":          s.Level,
			"notes":          s.Notes,
		}).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update swimmer query: %w", err)
	}

	cmdTag, err := db.Conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("swimmerID", s.ID).Msg("Error executing update swimmer query")
		return fmt.Errorf("error updating swimmer: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSwimmerNotFound
	}
	return nil
}

// Delete deletes a swimmer without enrollments
func (r *SwimmerRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("swimmers").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete swimmer query: %w", err)
	}

	cmdTag, err := db.Conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: swimmer has enrollments", apperrors.ErrHasRelations)
		}
		logger.Error().Err(err).Int64("swimmerID", id).Msg("Error executing delete swimmer query")
		return fmt.Errorf("error deleting swimmer: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSwimmerNotFound
	}
	return nil
}
