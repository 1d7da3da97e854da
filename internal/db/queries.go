package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"intelliq/internal/apperr"
	"intelliq/internal/models"
)

// DBTX is the subset of pgx used by Queries, satisfied by both *pgxpool.Pool
// and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries is the typed store layer. Driver-level failures are translated to
// apperr kinds here so handlers never see pgx errors.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const quizColumns = `id, email, topic, difficulty, questions, selected_answers, score, attempt_status, created_at, updated_at`

func scanQuiz(row pgx.Row) (models.Quiz, error) {
	var q models.Quiz
	err := row.Scan(
		&q.ID, &q.Email, &q.Topic, &q.Difficulty,
		&q.Questions, &q.SelectedAnswers,
		&q.Score, &q.AttemptStatus,
		&q.CreatedAt, &q.UpdatedAt,
	)
	return q, err
}

// CreateQuizParams carries the fields the generation flow supplies; attempt
// state and timestamps are server-assigned.
type CreateQuizParams struct {
	Email      string
	Topic      string
	Difficulty string
	Questions  []models.Question
}

const createQuiz = `
INSERT INTO quizzes (id, email, topic, difficulty, questions, selected_answers, score, attempt_status)
VALUES ($1, $2, $3, $4, $5, '{}', 0, 'unattempted')
RETURNING ` + quizColumns

// CreateQuiz persists a freshly generated quiz and returns the stored record,
// including its generated identity.
func (q *Queries) CreateQuiz(ctx context.Context, arg CreateQuizParams) (models.Quiz, error) {
	if len(arg.Questions) == 0 {
		return models.Quiz{}, apperr.New(apperr.Validation, "quiz must contain at least one question")
	}
	row := q.db.QueryRow(ctx, createQuiz,
		uuid.New(), arg.Email, arg.Topic, arg.Difficulty, arg.Questions)
	quiz, err := scanQuiz(row)
	if err != nil {
		return models.Quiz{}, apperr.Wrap(apperr.Internal, "failed to save quiz", err)
	}
	return quiz, nil
}

const getQuiz = `SELECT ` + quizColumns + ` FROM quizzes WHERE id = $1`

// GetQuiz fetches a quiz by id.
func (q *Queries) GetQuiz(ctx context.Context, id uuid.UUID) (models.Quiz, error) {
	quiz, err := scanQuiz(q.db.QueryRow(ctx, getQuiz, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Quiz{}, apperr.New(apperr.NotFound, "Quiz not found")
		}
		return models.Quiz{}, apperr.Wrap(apperr.Internal, "failed to fetch quiz", err)
	}
	return quiz, nil
}

// RecordAttemptParams is the attempt payload. Answers and score are written
// as given; a later submission replaces an earlier one wholesale.
type RecordAttemptParams struct {
	ID              uuid.UUID
	SelectedAnswers models.SelectedAnswers
	Score           int
}

const recordAttempt = `
UPDATE quizzes
SET selected_answers = $2,
    score = $3,
    attempt_status = 'attempted',
    updated_at = now()
WHERE id = $1
RETURNING ` + quizColumns

// RecordAttempt overwrites the quiz's attempt state. Last write wins; there
// is no concurrency check.
func (q *Queries) RecordAttempt(ctx context.Context, arg RecordAttemptParams) (models.Quiz, error) {
	row := q.db.QueryRow(ctx, recordAttempt, arg.ID, arg.SelectedAnswers, arg.Score)
	quiz, err := scanQuiz(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Quiz{}, apperr.New(apperr.NotFound, "Quiz not found")
		}
		return models.Quiz{}, apperr.Wrap(apperr.Internal, "failed to update quiz", err)
	}
	return quiz, nil
}

const listQuizzesByEmail = `
SELECT ` + quizColumns + `
FROM quizzes
WHERE email = $1
ORDER BY created_at DESC`

// ListQuizzesByEmail returns all quizzes owned by email, newest first. An
// unknown email yields an empty slice, not an error.
func (q *Queries) ListQuizzesByEmail(ctx context.Context, email string) ([]models.Quiz, error) {
	rows, err := q.db.Query(ctx, listQuizzesByEmail, email)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to fetch quizzes", err)
	}
	defer rows.Close()

	quizzes := []models.Quiz{}
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to fetch quizzes", err)
		}
		quizzes = append(quizzes, quiz)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to fetch quizzes", err)
	}
	return quizzes, nil
}

const userColumns = `id, name, email, role, created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

type CreateUserParams struct {
	Name  string
	Email string
	Role  string
}

const createUser = `
INSERT INTO users (id, name, email, role)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns

// CreateUser registers a new user. The users.email unique constraint, not a
// read-then-write check, detects duplicates.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error) {
	row := q.db.QueryRow(ctx, createUser, uuid.New(), arg.Name, arg.Email, arg.Role)
	user, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, apperr.New(apperr.Conflict, "User already exists")
		}
		return models.User{}, apperr.Wrap(apperr.Internal, "failed to create user", err)
	}
	return user, nil
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	user, err := scanUser(q.db.QueryRow(ctx, getUserByEmail, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, apperr.New(apperr.NotFound, "User not found")
		}
		return models.User{}, apperr.Wrap(apperr.Internal, "failed to fetch user", err)
	}
	return user, nil
}

type UpdateUserParams struct {
	Email string
	Name  string
	Role  string
}

const updateUserByEmail = `
UPDATE users
SET name = $2,
    role = $3,
    updated_at = now()
WHERE email = $1
RETURNING ` + userColumns

// UpdateUserByEmail updates name and role only; email is immutable.
func (q *Queries) UpdateUserByEmail(ctx context.Context, arg UpdateUserParams) (models.User, error) {
	row := q.db.QueryRow(ctx, updateUserByEmail, arg.Email, arg.Name, arg.Role)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, apperr.New(apperr.NotFound, "User not found")
		}
		return models.User{}, apperr.Wrap(apperr.Internal, "failed to update user", err)
	}
	return user, nil
}
