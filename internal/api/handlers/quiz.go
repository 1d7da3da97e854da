package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"intelliq/internal/apperr"
	"intelliq/internal/db"
	"intelliq/internal/extract"
	"intelliq/internal/gemini"
	"intelliq/internal/models"
)

const (
	// maxSourceChars bounds the text handed to the completion API.
	maxSourceChars = 4000
	// minSourceChars is the floor for extracted text; anything shorter is
	// treated as unreadable.
	minSourceChars = 20

	defaultEmail = "anonymous"

	archiveTimeout = 30 * time.Second
)

// GenerateQuiz handles POST /api/quiz/generate: multipart form with an
// optional file and topic/email/difficulty fields. Source text comes from the
// uploaded file when present, the topic field otherwise.
func (h *Handler) GenerateQuiz(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()

	topic := strings.TrimSpace(c.PostForm("topic"))
	email := strings.TrimSpace(c.PostForm("email"))
	if email == "" {
		email = defaultEmail
	}
	difficulty := strings.TrimSpace(c.PostForm("difficulty"))
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}

	fileHeader, fileErr := c.FormFile("file")
	if topic == "" && fileErr != nil {
		h.respondError(c, apperr.New(apperr.Validation, "Please provide a topic or upload a file."))
		return
	}

	source := topic
	var sourceFilename string
	var sourceData []byte

	if fileErr == nil {
		file, err := fileHeader.Open()
		if err != nil {
			h.respondError(c, apperr.Wrap(apperr.Internal, "failed to open uploaded file", err))
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			h.respondError(c, apperr.Wrap(apperr.Internal, "failed to read uploaded file", err))
			return
		}

		tempPath, err := extract.SaveTemp(data, fileHeader.Filename)
		if err != nil {
			h.respondError(c, apperr.Wrap(apperr.Internal, "failed to save uploaded file", err))
			return
		}

		// extract.Text removes the temp file whichever way it returns.
		text, err := extract.Text(tempPath, fileHeader.Header.Get("Content-Type"))
		if err != nil {
			h.respondError(c, err)
			return
		}
		if len(strings.TrimSpace(text)) < minSourceChars {
			h.respondError(c, apperr.New(apperr.Extraction, "Extracted text is too short or unreadable."))
			return
		}

		source = text
		sourceFilename = fileHeader.Filename
		sourceData = data
	}

	source = truncateSource(source, maxSourceChars)

	// Title generation is non-critical: any failure falls back to a fixed
	// label instead of aborting the request.
	title := gemini.FallbackTitle
	if generated, err := h.AI.GenerateTitle(ctx, source); err != nil {
		h.Log.Warn("title generation failed, using fallback", "error", err)
	} else {
		title = generated
	}

	questions, _, err := h.AI.GenerateQuiz(ctx, source, difficulty)
	if err != nil {
		h.respondError(c, err)
		return
	}

	quiz, err := h.Store.CreateQuiz(ctx, db.CreateQuizParams{
		Email:      email,
		Topic:      title,
		Difficulty: difficulty,
		Questions:  questions,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	if h.Archive != nil && sourceData != nil {
		go h.archiveSource(quiz.ID, sourceFilename, sourceData)
	}

	h.Log.Info("quiz generated",
		"quizId", quiz.ID,
		"topic", quiz.Topic,
		"difficulty", quiz.Difficulty,
		"questions", len(quiz.Questions),
		"duration", time.Since(start),
	)
	h.notify("quiz_created", map[string]interface{}{
		"quizId":    quiz.ID.String(),
		"topic":     quiz.Topic,
		"questions": len(quiz.Questions),
	})

	c.JSON(http.StatusOK, gin.H{
		"quizId":     quiz.ID,
		"topic":      quiz.Topic,
		"difficulty": quiz.Difficulty,
		"questions":  quiz.Questions,
	})
}

// archiveSource uploads the original document after the request has been
// answered. Failures are logged, never surfaced.
func (h *Handler) archiveSource(quizID uuid.UUID, filename string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()

	if _, err := h.Archive.Upload(ctx, quizID, filename, bytes.NewReader(data)); err != nil {
		h.Log.Warn("failed to archive source document", "quizId", quizID, "error", err)
	}
}

// GetQuiz handles GET /api/quiz/:id, returning the full quiz including any
// recorded attempt.
func (h *Handler) GetQuiz(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, apperr.New(apperr.NotFound, "Quiz not found"))
		return
	}

	quiz, err := h.Store.GetQuiz(c.Request.Context(), quizID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

type submitRequest struct {
	QuizID          string                 `json:"quizId"`
	SelectedAnswers models.SelectedAnswers `json:"selectedAnswers"`
	Score           int                    `json:"score"`
}

// SubmitQuiz handles POST /api/quiz/submit. The submitted answers and score
// replace whatever attempt was recorded before; the caller is trusted
// entirely on both.
func (h *Handler) SubmitQuiz(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Wrap(apperr.Validation, "Missing required fields", err))
		return
	}
	if req.QuizID == "" || req.SelectedAnswers == nil {
		h.respondError(c, apperr.New(apperr.Validation, "Missing required fields"))
		return
	}

	quizID, err := uuid.Parse(req.QuizID)
	if err != nil {
		// A malformed id cannot refer to any quiz.
		h.respondError(c, apperr.New(apperr.NotFound, "Quiz not found"))
		return
	}

	quiz, err := h.Store.RecordAttempt(c.Request.Context(), db.RecordAttemptParams{
		ID:              quizID,
		SelectedAnswers: req.SelectedAnswers,
		Score:           req.Score,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Log.Info("quiz attempt recorded", "quizId", quiz.ID, "score", quiz.Score)
	c.JSON(http.StatusOK, gin.H{
		"message": "Quiz attempt updated successfully",
		"quiz":    quiz,
	})
}

// ListQuizzesByEmail handles GET /api/quizzes/:email, returning summaries of
// every quiz owned by the address, newest first.
func (h *Handler) ListQuizzesByEmail(c *gin.Context) {
	email := c.Param("email")

	quizzes, err := h.Store.ListQuizzesByEmail(c.Request.Context(), email)
	if err != nil {
		h.respondError(c, err)
		return
	}

	summaries := make([]models.QuizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		summaries = append(summaries, quiz.Summary())
	}
	c.JSON(http.StatusOK, summaries)
}

// truncateSource bounds source text without splitting a multi-byte rune.
func truncateSource(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
