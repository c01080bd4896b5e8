package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/brightpath/wellbeing-worker/internal/handlers"
)

type RouterConfig struct {
	ClassificationHandler *handlers.ClassificationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/classification")
	{
		api.POST("/daily-scheduler", cfg.ClassificationHandler.RunDaily)
		api.POST("/weekly-scheduler", cfg.ClassificationHandler.RunWeekly)
		api.GET("/students/:studentID/latest", cfg.ClassificationHandler.LatestForStudent)
		api.GET("/students/:studentID/weekly", cfg.ClassificationHandler.WeeklyForStudent)
	}

	return router
}
