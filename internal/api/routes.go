package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"intelliq/internal/api/handlers"
)

// SetupRoutes registers CORS and the API routes on the router.
func SetupRoutes(router *gin.Engine, handler *handlers.Handler, frontendURL string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{strings.TrimSuffix(frontendURL, "/")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Cache-Control", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/quiz/generate", handler.GenerateQuiz)
		api.GET("/quiz/:id", handler.GetQuiz)
		api.POST("/quiz/submit", handler.SubmitQuiz)
		api.GET("/quizzes/:email", handler.ListQuizzesByEmail)

		api.POST("/user", handler.CreateUser)
		api.GET("/user/:email", handler.GetUserByEmail)
		api.PUT("/user/:email", handler.UpdateUserByEmail)
	}
}
