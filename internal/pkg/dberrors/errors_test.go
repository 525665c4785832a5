package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConstraintHelpers(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "enrollments_active_unique"})
	fk := &pgconn.PgError{Code: CodeForeignKeyViolation}
	check := &pgconn.PgError{Code: CodeCheckViolation}

	assert.True(t, IsDuplicateConstraintError(dup, "enrollments_active_unique"))
	assert.False(t, IsDuplicateConstraintError(dup, "users_email_key"))
	assert.True(t, IsUniqueViolation(dup))
	assert.False(t, IsUniqueViolation(fk))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.True(t, IsCheckViolation(check))
	assert.False(t, IsCheckViolation(errors.New("plain")))
}
