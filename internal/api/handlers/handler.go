package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"intelliq/internal/apperr"
	"intelliq/internal/db"
	"intelliq/internal/logger"
	"intelliq/internal/models"
)

// Store is the persistence surface the handlers need; *db.Queries satisfies
// it, tests use an in-memory fake.
type Store interface {
	CreateQuiz(ctx context.Context, arg db.CreateQuizParams) (models.Quiz, error)
	GetQuiz(ctx context.Context, id uuid.UUID) (models.Quiz, error)
	RecordAttempt(ctx context.Context, arg db.RecordAttemptParams) (models.Quiz, error)
	ListQuizzesByEmail(ctx context.Context, email string) ([]models.Quiz, error)
	CreateUser(ctx context.Context, arg db.CreateUserParams) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdateUserByEmail(ctx context.Context, arg db.UpdateUserParams) (models.User, error)
}

// Generator is the completion-API surface; *gemini.Client satisfies it.
type Generator interface {
	GenerateTitle(ctx context.Context, source string) (string, error)
	GenerateQuiz(ctx context.Context, source, difficulty string) ([]models.Question, string, error)
}

// Archiver uploads a quiz's source document to object storage.
type Archiver interface {
	Upload(ctx context.Context, quizID uuid.UUID, filename string, content io.Reader) (string, error)
}

// Handler carries the API handlers' dependencies.
type Handler struct {
	Log     *logger.Logger
	Store   Store
	AI      Generator
	Archive Archiver // nil disables source archival

	notifier *notifier
}

// NewHandler creates a new Handler. webhookURL may be empty, in which case
// ops notifications are disabled.
func NewHandler(log *logger.Logger, store Store, ai Generator, archive Archiver, webhookURL string) *Handler {
	return &Handler{
		Log:      log,
		Store:    store,
		AI:       ai,
		Archive:  archive,
		notifier: newNotifier(webhookURL, log),
	}
}

// respondError logs err, notifies the ops webhook for server-side failures,
// and writes the JSON error body. Every error leaving the façade goes
// through here.
func (h *Handler) respondError(c *gin.Context, err error) {
	e := apperr.From(err)
	status := e.Kind.HTTPStatus()

	h.Log.Error("request failed",
		"path", c.Request.URL.Path,
		"status", status,
		"kind", e.Kind.String(),
		"error", err.Error(),
	)

	body := gin.H{"error": e.Message}
	if e.Err != nil && e.Kind != apperr.Internal {
		body["details"] = e.Err.Error()
	}
	if e.Raw != "" {
		body["raw"] = e.Raw
	}

	if status >= http.StatusInternalServerError {
		h.notify("api_error", map[string]interface{}{
			"path":   c.Request.URL.Path,
			"status": status,
			"kind":   e.Kind.String(),
			"error":  e.Error(),
		})
	}

	c.AbortWithStatusJSON(status, body)
}
