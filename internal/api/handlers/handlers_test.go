package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"intelliq/internal/apperr"
	"intelliq/internal/db"
	"intelliq/internal/logger"
	"intelliq/internal/models"
)

// fakeStore is an in-memory Store with the same error semantics as
// db.Queries.
type fakeStore struct {
	quizzes map[uuid.UUID]models.Quiz
	users   map[string]models.User
	seq     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		quizzes: make(map[uuid.UUID]models.Quiz),
		users:   make(map[string]models.User),
	}
}

func (s *fakeStore) now() time.Time {
	s.seq++
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(s.seq) * time.Second)
}

func (s *fakeStore) CreateQuiz(_ context.Context, arg db.CreateQuizParams) (models.Quiz, error) {
	if len(arg.Questions) == 0 {
		return models.Quiz{}, apperr.New(apperr.Validation, "quiz must contain at least one question")
	}
	t := s.now()
	quiz := models.Quiz{
		ID:              uuid.New(),
		Email:           arg.Email,
		Topic:           arg.Topic,
		Difficulty:      arg.Difficulty,
		Questions:       arg.Questions,
		SelectedAnswers: models.SelectedAnswers{},
		Score:           0,
		AttemptStatus:   models.AttemptStatusUnattempted,
		CreatedAt:       t,
		UpdatedAt:       t,
	}
	s.quizzes[quiz.ID] = quiz
	return quiz, nil
}

func (s *fakeStore) GetQuiz(_ context.Context, id uuid.UUID) (models.Quiz, error) {
	quiz, ok := s.quizzes[id]
	if !ok {
		return models.Quiz{}, apperr.New(apperr.NotFound, "Quiz not found")
	}
	return quiz, nil
}

func (s *fakeStore) RecordAttempt(_ context.Context, arg db.RecordAttemptParams) (models.Quiz, error) {
	quiz, ok := s.quizzes[arg.ID]
	if !ok {
		return models.Quiz{}, apperr.New(apperr.NotFound, "Quiz not found")
	}
	quiz.SelectedAnswers = arg.SelectedAnswers
	quiz.Score = arg.Score
	quiz.AttemptStatus = models.AttemptStatusAttempted
	quiz.UpdatedAt = s.now()
	s.quizzes[arg.ID] = quiz
	return quiz, nil
}

func (s *fakeStore) ListQuizzesByEmail(_ context.Context, email string) ([]models.Quiz, error) {
	quizzes := []models.Quiz{}
	for _, quiz := range s.quizzes {
		if quiz.Email == email {
			quizzes = append(quizzes, quiz)
		}
	}
	sort.Slice(quizzes, func(i, j int) bool {
		return quizzes[i].CreatedAt.After(quizzes[j].CreatedAt)
	})
	return quizzes, nil
}

func (s *fakeStore) CreateUser(_ context.Context, arg db.CreateUserParams) (models.User, error) {
	if _, ok := s.users[arg.Email]; ok {
		return models.User{}, apperr.New(apperr.Conflict, "User already exists")
	}
	t := s.now()
	user := models.User{
		ID:        uuid.New(),
		Name:      arg.Name,
		Email:     arg.Email,
		Role:      arg.Role,
		CreatedAt: t,
		UpdatedAt: t,
	}
	s.users[arg.Email] = user
	return user, nil
}

func (s *fakeStore) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return models.User{}, apperr.New(apperr.NotFound, "User not found")
	}
	return user, nil
}

func (s *fakeStore) UpdateUserByEmail(_ context.Context, arg db.UpdateUserParams) (models.User, error) {
	user, ok := s.users[arg.Email]
	if !ok {
		return models.User{}, apperr.New(apperr.NotFound, "User not found")
	}
	user.Name = arg.Name
	user.Role = arg.Role
	user.UpdatedAt = s.now()
	s.users[arg.Email] = user
	return user, nil
}

// fakeAI is a canned Generator that records the source it was given.
type fakeAI struct {
	title     string
	titleErr  error
	questions []models.Question
	raw       string
	quizErr   error

	lastSource     string
	lastDifficulty string
}

func (a *fakeAI) GenerateTitle(_ context.Context, source string) (string, error) {
	if a.titleErr != nil {
		return "", a.titleErr
	}
	return a.title, nil
}

func (a *fakeAI) GenerateQuiz(_ context.Context, source, difficulty string) ([]models.Question, string, error) {
	a.lastSource = source
	a.lastDifficulty = difficulty
	if a.quizErr != nil {
		return nil, a.raw, a.quizErr
	}
	return a.questions, a.raw, nil
}

func makeQuestions(n int) []models.Question {
	questions := make([]models.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, models.Question{
			Question:    fmt.Sprintf("Question %d?", i+1),
			Options:     []string{"A", "B", "C", "D"},
			Answer:      i % 4,
			Explanation: "Because.",
		})
	}
	return questions
}

func createQuizParams(email string) db.CreateQuizParams {
	return db.CreateQuizParams{
		Email:      email,
		Topic:      "Arithmetic Refresher",
		Difficulty: models.DifficultyMedium,
		Questions:  makeQuestions(10),
	}
}

func recordAttemptParams(id uuid.UUID, score int) db.RecordAttemptParams {
	return db.RecordAttemptParams{
		ID:              id,
		SelectedAnswers: models.SelectedAnswers{"0": 1},
		Score:           score,
	}
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/quiz/generate", h.GenerateQuiz)
	r.GET("/api/quiz/:id", h.GetQuiz)
	r.POST("/api/quiz/submit", h.SubmitQuiz)
	r.GET("/api/quizzes/:email", h.ListQuizzesByEmail)
	r.POST("/api/user", h.CreateUser)
	r.GET("/api/user/:email", h.GetUserByEmail)
	r.PUT("/api/user/:email", h.UpdateUserByEmail)
	return r
}

func newTestHandler(store Store, ai Generator) *Handler {
	return NewHandler(logger.NewNop(), store, ai, nil, "")
}

// multipartForm builds a multipart body with string fields and, when
// fileName is non-empty, a "file" part with the given content type.
func multipartForm(t *testing.T, fields map[string]string, fileName, contentType string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if fileName != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName))
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader(fileContent))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func doRequest(t *testing.T, router *gin.Engine, method, url, contentType string, body *bytes.Buffer) *httptest.ResponseRecorder {
	t.Helper()

	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, url, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
