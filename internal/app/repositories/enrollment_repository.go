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
	"github.com/yigit/swimdesk/internal/pkg/helpers"
	"github.com/yigit/swimdesk/internal/pkg/logger"
)

var enrollmentColumns = []string{
	"id", "session_id", "swimmer_id", "class_ratio", "status", "notes",
	"transferred_from_id", "created_at", "updated_at",
}

// EnrollmentRepository handles enrollment and skip database operations
type EnrollmentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func scanEnrollment(row pgx.Row) (*models.Enrollment, error) {
	e := &models.Enrollment{}
	err := row.Scan(&e.ID, &e.SessionID, &e.SwimmerID, &e.ClassRatio, &e.Status, &e.Notes,
		&e.TransferredFromID, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// Create inserts an enrollment
func (r *EnrollmentRepository) Create(ctx context.Context, e *models.Enrollment) error {
	if e.Status == "" {
		e.Status = models.EnrollmentActive
	}
	sql, args, err := r.sb.Insert("enrollments").
		Columns("session_id", "swimmer_id", "class_ratio", "status", "notes", "transferred_from_id").
		Values(e.SessionID, e.SwimmerID, e.ClassRatio, e.Status, e.Notes, e.TransferredFromID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create enrollment SQL")
		return fmt.Errorf("failed to build create enrollment query: %w", err)
	}

	if err := db.Conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "enrollments_active_unique") {
			return apperrors.ErrAlreadyEnrolled
		}
		if dberrors.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: session or swimmer does not exist", apperrors.ErrResourceNotFound)
		}
		logger.Error().Err(err).Int64("sessionID", e.SessionID).Int64("swimmerID", e.SwimmerID).Msg("Error executing create enrollment query")
		return fmt.Errorf("error creating enrollment: %w", err)
	}
	return nil
}

// GetByID retrieves an enrollment by ID
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	sql, args, err := r.sb.Select(enrollmentColumns...).
		From("enrollments").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get enrollment query: %w", err)
	}

	e, err := scanEnrollment(db.Conn(ctx, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEnrollmentNotFound
		}
		logger.Error().Err(err).Int64("enrollmentID", id).Msg("Error scanning enrollment row")
		return nil, fmt.Errorf("error getting enrollment by ID: %w", err)
	}
	return e, nil
}

// List returns a page of enrollments, newest first, plus the total count
func (r *EnrollmentRepository) List(ctx context.Context, filter dto.EnrollmentFilter, offset uint64, limit int) ([]*models.Enrollment, int64, error) {
	where := squirrel.And{}
	if filter.SessionID != nil {
		where = append(where, squirrel.Eq{"session_id": *filter.SessionID})
	}
	if filter.SwimmerID != nil {
		where = append(where, squirrel.Eq{"swimmer_id": *filter.SwimmerID})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"status": *filter.Status})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("enrollments").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count enrollments query: %w", err)
	}
	var total int64
	if err := db.Conn(ctx, r.db).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting enrollments")
		return nil, 0, fmt.Errorf("error counting enrollments: %w", err)
	}

	sql, args, err := r.sb.Select(enrollmentColumns...).
		From("enrollments").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list enrollments query: %w", err)
	}

	rows, err := db.Conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list enrollments query")
		return nil, 0, fmt.Errorf("error querying enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := []*models.Enrollment{}
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning enrollment row: %w", err)
		}
		enrollments = append(enrollments, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating enrollment rows: %w", err)
	}
	return enrollments, total, nil
}

// UpdateStatus moves an ACTIVE enrollment to status
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) error {
	sql, args, err := r.sb.Update("enrollments").
		SetMap(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).
		Where(squirrel.Eq{"id": id, "status": models.EnrollmentActive}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update enrollment status query: %w", err)
	}

	cmdTag, err := db.Conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("enrollmentID", id).Msg("Error executing update enrollment status query")
		return fmt.Errorf("error updating enrollment status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrEnrollmentNotActive
	}
	return nil
}

// ActiveBySessions returns the active enrollments of each session with swimmer names
func (r *EnrollmentRepository) ActiveBySessions(ctx context.Context, sessionIDs []int64) (map[int64][]*models.RosterEnrollment, error) {
	result := make(map[int64][]*models.RosterEnrollment, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return result, nil
	}

	sql, args, err := r.sb.Select("e.id", "e.session_id", "e.swimmer_id", "sw.first_name", "sw.last_name", "e.class_ratio").
		From("enrollments e").
		Join("swimmers sw ON sw.id = e.swimmer_id").
		Where(squirrel.Eq{"e.session_id": sessionIDs, "e.status": models.EnrollmentActive}).
		OrderBy("e.session_id ASC", "sw.last_name ASC", "sw.first_name ASC", "e.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build active enrollments query: %w", err)
	}

	rows, err := db.Conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing active enrollments query")
		return nil, fmt.Errorf("error querying active enrollments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		re := &models.RosterEnrollment{}
		if err := rows.Scan(&re.EnrollmentID, &re.SessionID, &re.SwimmerID, &re.SwimmerFirstName, &re.SwimmerLastName,
			&re.ClassRatio); err != nil {
			return nil, fmt.Errorf("error scanning active enrollment row: %w", err)
		}
		result[re.SessionID] = append(result[re.SessionID], re)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active enrollment rows: %w", err)
	}
	return result, nil
}

// SkipDatesByEnrollments returns the skipped calendar dates (YYYY-MM-DD) of each enrollment
func (r *EnrollmentRepository) SkipDatesByEnrollments(ctx context.Context, enrollmentIDs []int64) (map[int64]map[string]bool, error) {
	result := make(map[int64]map[string]bool)
	if len(enrollmentIDs) == 0 {
		return result, nil
	}

	sql, args, err := r.sb.Select("enrollment_id", "skip_date").
		From("enrollment_skips").
		Where(squirrel.Eq{"enrollment_id": enrollmentIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build skip dates query: %w", err)
	}

	rows, err := db.Conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing skip dates query")
		return nil, fmt.Errorf("error querying skip dates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var enrollmentID int64
		var day time.Time
		if err := rows.Scan(&enrollmentID, &day); err != nil {
			return nil, fmt.Errorf("error scanning skip date row: %w", err)
		}
		if result[enrollmentID] == nil {
			result[enrollmentID] = make(map[string]bool)
		}
		result[enrollmentID][helpers.DateKey(day, time.UTC)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating skip date rows: %w", err)
	}
	return result, nil
}

// CreateSkip records a skipped date for an enrollment
func (r *EnrollmentRepository) CreateSkip(ctx context.Context, skip *models.EnrollmentSkip) error {
	sql, args, err := r.sb.Insert("enrollment_skips").
		Columns("enrollment_id", "skip_date", "reason").
		Values(skip.EnrollmentID, skip.SkipDate, skip.Reason).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create skip query: %w", err)
	}

	if err := db.Conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&skip.ID, &skip.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "enrollment_skips_unique") {
			return apperrors.ErrSkipAlreadyRecorded
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrEnrollmentNotFound
		}
		logger.Error().Err(err).Int64("enrollmentID", skip.EnrollmentID).Msg("Error executing create skip query")
		return fmt.Errorf("error creating skip: %w", err)
	}
	return nil
}

// ListSkips returns the recorded skips of an enrollment by date
func (r *EnrollmentRepository) ListSkips(ctx context.Context, enrollmentID int64) ([]*models.EnrollmentSkip, error) {
	sql, args, err := r.sb.Select("id", "enrollment_id", "skip_date", "reason", "created_at").
		From("enrollment_skips").
		Where(squirrel.Eq{"enrollment_id": enrollmentID}).
		OrderBy("skip_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list skips query: %w", err)
	}

	rows, err := db.Conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("enrollmentID", enrollmentID).Msg("Error executing list skips query")
		return nil, fmt.Errorf("error querying skips: %w", err)
	}
	defer rows.Close()

	skips := []*models.EnrollmentSkip{}
	for rows.Next() {
		s := &models.EnrollmentSkip{}
		if err := rows.Scan(&s.ID, &s.EnrollmentID, &s.SkipDate, &s.Reason, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning skip row: %w", err)
		}
		skips = append(skips, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating skip rows: %w", err)
	}
	return skips, nil
}
