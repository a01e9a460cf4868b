package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/admiralorbiter/skien/internal/auth"
	"github.com/admiralorbiter/skien/internal/database"
	"github.com/admiralorbiter/skien/internal/handlers"
	"github.com/admiralorbiter/skien/internal/importer"
	"github.com/admiralorbiter/skien/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dbConfig := database.LoadConfig()
	if err := database.Connect(dbConfig); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	setupGracefulShutdown()
	setupServer()
}

func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Received shutdown signal, gracefully shutting down...")
		database.Close()
		log.Println("Shutdown complete")
		os.Exit(0)
	}()
}

func setupServer() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	db := database.DB

	usersService := services.NewUsersService(db)
	auditService := services.NewAuditService(db)
	topicsService := services.NewTopicsService(db)
	threadsService := services.NewThreadsService(db)
	eventsService := services.NewEventsService(db)
	edgesService := services.NewEdgesService(db)
	storiesService := services.NewStoriesService(db)
	tagsService := services.NewTagsService(db)

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	imp := importer.New(db, uploadDir)

	issuer := auth.NewTokenIssuerFromEnv()
	authHandler := handlers.NewAuthHandler(usersService, issuer)
	adminHandler := handlers.NewAdminHandler(db, usersService, auditService)
	contentHandler := handlers.NewContentHandler(topicsService, threadsService,
		eventsService, edgesService, storiesService, tagsService, auditService)
	importHandler := handlers.NewImportHandler(imp, auditService)
	docsHandler := handlers.NewDocsHandler(".")

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/docs/:doc", docsHandler.ServeMarkdownAsHTML)

	r.POST("/api/login", authHandler.Login)

	api := r.Group("/api", authHandler.RequireAdmin())
	{
		api.GET("/dashboard", adminHandler.Dashboard)
		api.GET("/stats", adminHandler.Stats)
		api.GET("/logs", adminHandler.ListLogs)

		api.GET("/users", adminHandler.ListUsers)
		api.POST("/users", adminHandler.CreateUser)
		api.PUT("/users/:id", adminHandler.UpdateUser)
		api.DELETE("/users/:id", adminHandler.DeleteUser)

		api.GET("/topics", contentHandler.ListTopics)
		api.POST("/topics", contentHandler.CreateTopic)
		api.GET("/topics/:id", contentHandler.GetTopic)
		api.PUT("/topics/:id", contentHandler.UpdateTopic)
		api.DELETE("/topics/:id", contentHandler.DeleteTopic)
		api.GET("/topics/:id/events", contentHandler.TopicEvents)
		api.GET("/topics/:id/threads", contentHandler.TopicThreads)

		api.POST("/threads", contentHandler.CreateThread)
		api.GET("/threads/:id", contentHandler.GetThread)
		api.PUT("/threads/:id", contentHandler.UpdateThread)
		api.DELETE("/threads/:id", contentHandler.DeleteThread)
		api.POST("/threads/:id/events/:eventId", contentHandler.AddThreadEvent)
		api.DELETE("/threads/:id/events/:eventId", contentHandler.RemoveThreadEvent)
		api.PUT("/threads/:id/stories", contentHandler.SetThreadStories)
		api.POST("/threads/:id/start-date", contentHandler.UpdateThreadStartDate)

		api.POST("/events", contentHandler.CreateEvent)
		api.GET("/events/:id", contentHandler.GetEvent)
		api.PUT("/events/:id", contentHandler.UpdateEvent)
		api.DELETE("/events/:id", contentHandler.DeleteEvent)
		api.GET("/events/:id/related", contentHandler.RelatedEvents)
		api.GET("/events/:id/edges", contentHandler.EventEdges)
		api.POST("/events/:id/stories", contentHandler.AddEventStory)
		api.DELETE("/events/:id/stories/:storyId", contentHandler.RemoveEventStory)

		api.POST("/edges", contentHandler.CreateEdge)
		api.POST("/edges/:id/reverse", contentHandler.ReverseEdge)
		api.DELETE("/edges/:id", contentHandler.DeleteEdge)
		api.GET("/edges/stats", contentHandler.RelationStats)
		api.GET("/edges/types", contentHandler.RelationTypes)

		api.GET("/stories", contentHandler.ListStories)
		api.POST("/stories", contentHandler.CreateStory)
		api.GET("/stories/:id", contentHandler.GetStory)
		api.PUT("/stories/:id", contentHandler.UpdateStory)
		api.DELETE("/stories/:id", contentHandler.DeleteStory)
		api.POST("/stories/check-duplicates", contentHandler.CheckDuplicates)
		api.POST("/stories/:id/tags", contentHandler.AddStoryTag)
		api.DELETE("/stories/:id/tags/:name", contentHandler.RemoveStoryTag)
		api.POST("/stories/:id/topics", contentHandler.AddStoryTopic)
		api.DELETE("/stories/:id/topics/:topicId", contentHandler.RemoveStoryTopic)

		api.GET("/tags", contentHandler.ListTags)
		api.GET("/tags/popular", contentHandler.PopularTags)
		api.DELETE("/tags/:id", contentHandler.DeleteTag)

		api.POST("/import/upload", importHandler.Upload)
		api.POST("/import/preview", importHandler.Preview)
		api.POST("/import/process", importHandler.Process)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting server on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
