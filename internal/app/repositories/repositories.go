package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	TokenRepository      *TokenRepository
	OfferingRepository   *OfferingRepository
	InstructorRepository *InstructorRepository
	SwimmerRepository    *SwimmerRepository
	SessionRepository    *SessionRepository
	EnrollmentRepository *EnrollmentRepository
	PaymentRepository    *PaymentRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(db),
		TokenRepository:      NewTokenRepository(db),
		OfferingRepository:   NewOfferingRepository(db),
		InstructorRepository: NewInstructorRepository(db),
		SwimmerRepository:    NewSwimmerRepository(db),
		SessionRepository:    NewSessionRepository(db),
		EnrollmentRepository: NewEnrollmentRepository(db),
		PaymentRepository:    NewPaymentRepository(db),
	}
}

// statementBuilder returns a squirrel builder using Postgres placeholders
func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
