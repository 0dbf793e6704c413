package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/thesisportal/backend/database"
	"github.com/thesisportal/backend/handlers"
	"github.com/thesisportal/backend/natsserver"
	"github.com/thesisportal/backend/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Connect to database
	if err := database.Connect(); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
	defer database.Close()

	// Start embedded NATS server for broadcast fan-out
	natsCfg := natsserver.DefaultConfig()
	if portEnv := os.Getenv("NATS_PORT"); portEnv != "" {
		port, err := strconv.Atoi(portEnv)
		if err != nil {
			log.Fatalf("❌ Invalid NATS_PORT %q: %v", portEnv, err)
		}
		natsCfg.Port = port
	}
	natsServer, err := natsserver.New(natsCfg)
	if err != nil {
		log.Fatalf("❌ Failed to start NATS server: %v", err)
	}
	defer natsServer.Shutdown()
	log.Printf("📡 Broadcast NATS server started on port %d", natsServer.Port())

	// Initialize hub for WebSocket fan-out
	hub := services.NewHub(natsServer.Conn())
	go hub.Run()
	handlers.SetHub(hub)
	log.Println("📺 Portal hub initialized")

	// Setup Gin router
	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// CORS middleware
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.AllowCredentials = false
	router.Use(cors.New(config))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// WebSocket route (outside /api group)
	router.GET("/ws", handlers.HandleWebSocket)

	// API Routes
	api := router.Group("/api")
	{
		// Hub stats
		api.GET("/hub/stats", handlers.GetHubStats)

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/logout", handlers.Logout)
		}

		// Project routes
		projects := api.Group("/projects")
		projects.Use(handlers.AuthMiddleware())
		{
			projects.GET("", handlers.GetProjects)
			projects.GET("/:id", handlers.GetProject)
			projects.POST("", handlers.CreateProject)
		}
	}

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 Server running on http://localhost:%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
