package main

import (
	"log"

	"github.com/Mojelloul/doqcm/internal/config"
	"github.com/Mojelloul/doqcm/internal/database"
	"github.com/Mojelloul/doqcm/internal/gemini"
	"github.com/Mojelloul/doqcm/internal/handlers"
	"github.com/Mojelloul/doqcm/internal/middleware"
	"github.com/Mojelloul/doqcm/internal/services"
	"github.com/Mojelloul/doqcm/internal/ws"
	"github.com/Mojelloul/doqcm/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// @title           DoQCM API
// @version         1.0
// @description     API for document analysis, MCQ generation and quiz distribution
// @host            localhost:8080
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter "Bearer {token}"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables from OS")
	}
	logger.Init()

	cfg := config.Load()

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	hub := ws.NewHub()

	geminiClient := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiAPIURL, cfg.GeminiModel)

	authService := services.NewAuthService(db, cfg.JWTSecret)
	analysisService := services.NewAnalysisService(db, geminiClient, cfg.QuestionCount)
	quizService := services.NewQuizService(db)
	documentService := services.NewDocumentService(db)
	accountService := services.NewAccountService(db)

	authHandler := handlers.NewAuthHandler(authService)
	analysisHandler := handlers.NewAnalysisHandler(analysisService)
	documentHandler := handlers.NewDocumentHandler(documentService, quizService, authService, hub)
	accountHandler := handlers.NewAccountHandler(accountService)
	wsHandler := handlers.NewWSHandler(hub, authService, documentService)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/ws/documents/:id/results", wsHandler.HandleResults)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.JWTAuth(authService), authHandler.Me)
		}

		analysis := api.Group("/analysis")
		analysis.Use(middleware.JWTAuth(authService))
		{
			analysis.POST("", analysisHandler.Analyze)
		}

		documents := api.Group("/documents")
		documents.Use(middleware.JWTAuth(authService))
		{
			documents.GET("", documentHandler.ListShared)
			documents.GET("/:id/quiz", documentHandler.GetQuiz)
			documents.POST("/:id/quiz", documentHandler.SubmitQuiz)
		}

		myDocuments := api.Group("/my-documents")
		myDocuments.Use(middleware.JWTAuth(authService))
		{
			myDocuments.GET("", documentHandler.ListOwned)
			myDocuments.GET("/:id/results", documentHandler.GetResults)
			myDocuments.DELETE("/:id", documentHandler.DeleteDocument)
		}

		account := api.Group("/account")
		account.Use(middleware.JWTAuth(authService))
		{
			account.GET("/export", accountHandler.Export)
			account.DELETE("", accountHandler.Delete)
		}
	}

	log.Printf("server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
