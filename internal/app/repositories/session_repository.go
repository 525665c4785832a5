package repositories

import (
	"context"
	"errors"
	"fmt"

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

var sessionWithOfferingColumns = []string{
	"s.id", "s.offering_id", "s.starts_at", "s.duration_minutes", "s.location", "s.capacity_override", "s.created_at",
	"o.id", "o.title", "o.notes", "o.level", "o.default_class_ratio", "o.base_capacity",
	"o.price_cents", "o.is_active", "o.created_at", "o.updated_at",
}

// SessionRepository handles scheduled session database operations
type SessionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func scanSessionWithOffering(row pgx.Row) (*models.Session, error) {
	s := &models.Session{Offering: &models.Offering{}}
	o := s.Offering
	err := row.Scan(&s.ID, &s.OfferingID, &s.StartsAt, &s.DurationMinutes, &s.Location, &s.CapacityOverride, &s.CreatedAt,
		&o.ID, &o.Title, &o.Notes, &o.Level, &o.DefaultClassRatio, &o.BaseCapacity,
		&o.PriceCents, &o.IsActive, &o.CreatedAt, &o.UpdatedAt)
	return s, err
}

func (r *SessionRepository) selectWithOffering() squirrel.SelectBuilder {
	return r.sb.Select(sessionWithOfferingColumns...).
		From("sessions s").
		Join("offerings o ON o.id = s.offering_id")
}

func sessionFilterWhere(filter dto.SessionFilter) squirrel.And {
	where := squirrel.And{}
	if filter.From != nil {
		where = append(where, squirrel.GtOrEq{"s.starts_at": *filter.From})
	}
	if filter.To != nil {
		where = append(where, squirrel.Lt{"s.starts_at": *filter.To})
	}
	if filter.OfferingID != nil {
		where = append(where, squirrel.Eq{"s.offering_id": *filter.OfferingID})
	}
	return where
}

// Create inserts a session
func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	sql, args, err := r.sb.Insert("sessions").
		Columns("offering_id", "starts_at", "duration_minutes", "location", "capacity_override").
		Values(s.OfferingID, s.StartsAt, s.DurationMinutes, s.Location, s.CapacityOverride).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create session SQL")
		return fmt.Errorf("failed to build create session query: %w", err)
	}

	if err := db.Conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&s.ID, &s.CreatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrOfferingNotFound
		}
		logger.Error().Err(err).Msg("Error executing create session query")
		return fmt.Errorf("error creating session: %w", err)
	}
	return nil
}

// GetByID retrieves a session together with its offering
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*models.Session, error) {
	sql, args, err := r.selectWithOffering().Where(squirrel.Eq{"s.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get session query: %w", err)
	}

	s, err := scanSessionWithOffering(db.Conn(ctx, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSessionNotFound
		}
		logger.Error().Err(err).Int64("sessionID", id).Msg("Error scanning session row")
		return nil, fmt.Errorf("error getting session by ID: %w", err)
	}
	return s, nil
}

// LockByID takes a row lock on the session for the rest of the current transaction.
// Enrollment writes for one session are serialized through this lock.
func (r *SessionRepository) LockByID(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Select("id").From("sessions").Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build lock session query: %w", err)
	}

	var locked int64
	if err := db.Conn(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrSessionNotFound
		}
		logger.Error().Err(err).Int64("sessionID", id).Msg("Error locking session row")
		return fmt.Errorf("error locking session: %w", err)
	}
	return nil
}

// List returns a page of sessions ordered by start time, plus the total count
func (r *SessionRepository) List(ctx context.Context, filter dto.SessionFilter, offset uint64, limit int) ([]*models.Session, int64, error) {
	where := sessionFilterWhere(filter)

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("sessions s").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count sessions query: %w", err)
	}
	var total int64
	if err := db.Conn(ctx, r.db).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting sessions")
		return nil, 0, fmt.Errorf("error counting sessions: %w", err)
	}

	sql, args, err := r.selectWithOffering().
		Where(where).
		OrderBy("s.starts_at ASC", "s.id ASC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list sessions query: %w", err)
	}

	rows, err := db.Conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list sessions query")
		return nil, 0, fmt.Errorf("error querying sessions: %w", err)
	}
	defer rows.Close()

	sessions := []*models.Session{}
	for rows.Next() {
		s, err := scanSessionWithOffering(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning session row: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating session rows: %w", err)
	}
	return sessions, total, nil
}

// Update updates a session's schedule fields
func (r *SessionRepository) Update(ctx context.Context, s *models.Session) error {
	sql, args, err := r.sb.Update("sessions").
		SetMap(map[string]interface{}{
			"offering_id":       s.OfferingID,
			"starts_at":         s.StartsAt,
			"duration_minutes":  s.DurationMinutes,
			"location":          s.Location,
			"capacity_override": s.CapacityOverride,
		}).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update session query: %w", err)
	}

	cmdTag, err := db.Conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrOfferingNotFound
		}
		logger.Error().Err(err).Int64("sessionID", s.ID).Msg("Error executing update session query")
		return fmt.Errorf("error updating session: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

// Delete deletes a session without enrollments
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("sessions").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete session query: %w", err)
	}

	cmdTag, err := db.Conn(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: session has enrollments", apperrors.ErrHasRelations)
		}
		logger.Error().Err(err).Int64("sessionID", id).Msg("Error executing delete session query")
		return fmt.Errorf("error deleting session: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

// ReplaceInstructors sets the instructors assigned to a session.
// Call it inside a transaction so the delete and inserts are applied together.
func (r *SessionRepository) ReplaceInstructors(ctx context.Context, sessionID int64, instructorIDs []int64) error {
	delSQL, delArgs, err := r.sb.Delete("session_instructors").Where(squirrel.Eq{"session_id": sessionID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build clear instructors query: %w", err)
	}
	if _, err := db.Conn(ctx, r.db).Exec(ctx, delSQL, delArgs...); err != nil {
		logger.Error().Err(err).Int64("sessionID", sessionID).Msg("Error clearing session instructors")
		return fmt.Errorf("error clearing session instructors: %w", err)
	}

	if len(instructorIDs) == 0 {
		return nil
	}

	insert := r.sb.Insert("session_instructors").Columns("session_id", "instructor_id").Suffix("ON CONFLICT DO NOTHING")
	for _, id := range instructorIDs {
		insert = insert.Values(sessionID, id)
	}
	sql, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build assign instructors query: %w", err)
	}
	if _, err := db.Conn(ctx, r.db).Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrInstructorNotFound
		}
		logger.Error().Err(err).Int64("sessionID", sessionID).Msg("Error assigning session instructors")
		return fmt.Errorf("error assigning session instructors: %w", err)
	}
	return nil
}

// InstructorsBySession returns the assigned instructors keyed by session ID
func (r *SessionRepository) InstructorsBySession(ctx context.Context, sessionIDs []int64) (map[int64][]*models.Instructor, error) {
	result := make(map[int64][]*models.Instructor, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return result, nil
	}

	sql, args, err := r.sb.Select("si.session_id", "i.id", "i.user_id", "i.first_name", "i.last_name", "i.email",
		"i.certifications", "i.is_active", "i.created_at").
		From("session_instructors si").
		Join("instructors i ON i.id = si.instructor_id").
		Where(squirrel.Eq{"si.session_id": sessionIDs}).
		OrderBy("si.session_id ASC", "i.last_name ASC", "i.first_name ASC", "i.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build session instructors query: %w", err)
	}

	rows, err := db.Conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing session instructors query")
		return nil, fmt.Errorf("error querying session instructors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sessionID int64
		i := &models.Instructor{}
		if err := rows.Scan(&sessionID, &i.ID, &i.UserID, &i.FirstName, &i.LastName, &i.Email,
			&i.Certifications, &i.IsActive, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning session instructor row: %w", err)
		}
		result[sessionID] = append(result[sessionID], i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session instructor rows: %w", err)
	}
	return result, nil
}
