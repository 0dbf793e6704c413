package handlers

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/thesisportal/backend/database"
	"github.com/thesisportal/backend/models"
	"github.com/thesisportal/backend/natsserver"
	"github.com/thesisportal/backend/services"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// setupRouter wires a router the way main does: database, embedded NATS,
// hub, and the portal routes.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	setupTestDB(t)

	ns, err := natsserver.New(natsserver.Config{
		Port:       -1, // random free port
		MaxPayload: 1 * 1024 * 1024,
	})
	if err != nil {
		t.Fatalf("Failed to start test NATS server: %v", err)
	}
	t.Cleanup(ns.Shutdown)

	hub := services.NewHub(ns.Conn())
	go hub.Run()
	SetHub(hub)
	t.Cleanup(func() { SetHub(nil) })

	router := gin.New()
	router.GET("/ws", HandleWebSocket)

	api := router.Group("/api")
	api.GET("/hub/stats", GetHubStats)

	auth := api.Group("/auth")
	auth.POST("/register", Register)
	auth.POST("/login", Login)
	auth.POST("/logout", Logout)

	projects := api.Group("/projects")
	projects.Use(AuthMiddleware())
	projects.GET("", GetProjects)
	projects.GET("/:id", GetProject)
	projects.POST("", CreateProject)

	return router
}

func createTestUser(t *testing.T, role models.Role) models.User {
	t.Helper()

	user := models.User{
		PasswordHash: "x",
		Name:         "Test",
		LastName:     "User",
		Email:        fmt.Sprintf("%s@example.com", models.NewID()),
		IsConfirmed:  true,
		Role:         role,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func createTestSession(t *testing.T, user models.User, expiresAt time.Time) models.Session {
	t.Helper()

	session := models.Session{
		ID:        models.NewID(),
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}
	if err := database.DB.Create(&session).Error; err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}
	return session
}
