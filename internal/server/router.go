package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pathwise/pathwise-backend/internal/handlers"
)

type RouterConfig struct {
	DocumentHandler *handlers.DocumentHandler
	RoadmapHandler  *handlers.RoadmapHandler
	JobHandler      *handlers.JobHandler
	SSEHandler      *handlers.SSEHandler
	AllowOrigins    []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-User-ID"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Documents
		api.POST("/documents", cfg.DocumentHandler.Upload)
		api.GET("/documents/:id", cfg.DocumentHandler.Get)
		api.GET("/documents/:id/summary", cfg.DocumentHandler.GetSummary)
		api.GET("/documents/:id/quiz", cfg.DocumentHandler.GetQuiz)
		api.GET("/documents/:id/graph", cfg.DocumentHandler.GetGraph)
		api.GET("/documents/:id/job", cfg.DocumentHandler.GetJob)

		// Roadmaps
		api.POST("/roadmaps", cfg.RoadmapHandler.Create)
		api.GET("/roadmaps/:id", cfg.RoadmapHandler.Get)
		api.GET("/roadmaps/:id/job", cfg.RoadmapHandler.GetJob)
		api.POST("/roadmaps/:id/expand", cfg.RoadmapHandler.Expand)
		api.POST("/roadmaps/:id/progress", cfg.RoadmapHandler.UpsertProgress)
		api.GET("/roadmaps/:id/progress", cfg.RoadmapHandler.GetProgressSummary)
		api.POST("/roadmaps/:id/quiz-attempts", cfg.RoadmapHandler.StartQuizAttempt)
		api.POST("/quiz-attempts/:attemptId/submit", cfg.RoadmapHandler.SubmitQuizAttempt)

		// Jobs
		api.GET("/jobs/:id", cfg.JobHandler.Get)

		// SSE
		api.GET("/events", cfg.SSEHandler.Stream)
	}

	return router
}
