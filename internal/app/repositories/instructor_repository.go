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

var instructorColumns = []string{
	"id", "user_id", "first_name", "last_name", "email", "certifications", "is_active", "created_at",
}

// InstructorRepository handles instructor database operations
type InstructorRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewInstructorRepository creates a new InstructorRepository
func NewInstructorRepository(db *pgxpool.Pool) *InstructorRepository {
	return &InstructorRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func scanInstructor(row pgx.Row) (*models.Instructor, error) {
	i := &models.Instructor{}
	err := row.Scan(&i.ID, &i.UserID, &i.FirstName, &i.LastName, &i.Email, &i.Certifications, &i.IsActive, &i.CreatedAt)
	return i, err
}

func instructorWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "instructors_email_key"):
		return apperrors.ErrEmailAlreadyExists
	case dberrors.IsDuplicateConstraintError(err, "instructors_user_key"):
		return fmt.Errorf("%w: user already linked to another instructor", apperrors.ErrConflict)
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrUserNotFound
	}
	return nil
}

// Create inserts an instructor
func (r *InstructorRepository) Create(ctx context.Context, i *models.Instructor) error {
	sql, args, err := r.sb.Insert("instructors").
		Columns("user_id", "first_name", "last_name", "email", "certifications", "is_active").
		Values(i.UserID, i.FirstName, i.LastName, strings.ToLower(i.Email), i.Certifications, i.IsActive).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create instructor SQL")
		return fmt.Errorf("failed to build create instructor query: %w", err)
	}

	if err := db.Conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&i.ID, &i.CreatedAt); err != nil {
		if mapped := instructorWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Msg("Error executing create instructor query")
		return fmt.Errorf("error creating instructor: %w", err)
	}
	return nil
}

// GetByID retrieves an instructor by ID
func (r *InstructorRepository) GetByID(ctx context.Context, id int64) (*models.Instructor, error) {
	sql, args, err := r.sb.Select(instructorColumns...).
		From("instructors").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get instructor query: %w", err)
	}

	i, err := scanInstructor(db.Conn(ctx, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInstructorNotFound
		}
		logger.Error().Err(err).Int64("instructorID", id).Msg("Error scanning instructor row")
		return nil, fmt.Errorf("error getting instructor by ID: %w", err)
	}
	return i, nil
}

func (r *InstructorRepository) queryInstructors(ctx context.Context, q squirrel.SelectBuilder) ([]*models.Instructor, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build instructor query: %w", err)
	}

	rows, err := db.Conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing instructor query")
		return nil, fmt.Errorf("error querying instructors: %w", err)
	}
	defer rows.Close()

	instructors := []*models.Instructor{}
	for rows.Next() {
		i, err := scanInstructor(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning instructor row: %w", err)
		}
		instructors = append(instructors, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating instructor rows: %w", err)
	}
	return instructors, nil
}

// List returns instructors ordered by name
func (r *InstructorRepository) List(ctx context.Context, activeOnly bool) ([]*models.Instructor, error) {
	q := r.sb.Select(instructorColumns...).From("instructors").OrderBy("last_name ASC", "first_name ASC", "id ASC")
	if activeOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}
	return r.queryInstructors(ctx, q)
}

// GetByIDs returns the instructors with the given IDs; missing IDs are simply absent
func (r *InstructorRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Instructor, error) {
	if len(ids) == 0 {
		return []*models.Instructor{}, nil
	}
	return r.queryInstructors(ctx, r.sb.Select(instructorColumns...).From("instructors").
		Where(squirrel.Eq{"id": ids}).OrderBy("id ASC"))
}

// Update updates an instructor
func (r *InstructorRepository) Update(ctx context.Context, i *models.Instructor) error {
	sql, args, err := r.sb.Update("instructors").
		SetMap(map[string]interface{}{
			"user_id":        i.UserID,
			"first_name":     i.FirstName,
			"last_name":      i.LastName,
			"email":          strings.ToLower(i.Email),
			"certifications": i.Certifications,
			"is_active":      i.IsActive,
		}).
		Where(squirrel.Eq{"id": i.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update instructor query: %w", err)
	}

	cmdTag, err := db.Conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		if mapped := instructorWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Int64("instructorID", i.ID).Msg("Error executing update instructor query")
		return fmt.Errorf("error updating instructor: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrInstructorNotFound
	}
	return nil
}

// Delete deletes an instructor not assigned to any session
func (r *InstructorRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("instructors").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete instructor query: %w", err)
	}

	cmdTag, err := db.Conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: instructor is assigned to sessions", apperrors.ErrHasRelations)
		}
		logger.Error().Err(err).Int64("instructorID", id).Msg("Error executing delete instructor query")
		return fmt.Errorf("error deleting instructor: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrInstructorNotFound
	}
	return nil
}
