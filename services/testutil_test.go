package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/thesisportal/backend/database"
	"github.com/thesisportal/backend/models"
	"github.com/thesisportal/backend/natsserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB swaps the package-global database for a fresh in-memory sqlite
// database, migrated for all portal models.
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

// setupTestNATS starts an embedded NATS server on a random port.
func setupTestNATS(t *testing.T) *natsserver.EmbeddedNATS {
	t.Helper()

	ns, err := natsserver.New(natsserver.Config{
		Port:       -1, // random free port
		MaxPayload: 1 * 1024 * 1024,
	})
	if err != nil {
		t.Fatalf("Failed to start test NATS server: %v", err)
	}
	t.Cleanup(ns.Shutdown)
	return ns
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

func createTestProject(t *testing.T, author models.User, title string) models.ThesisProject {
	t.Helper()

	project := models.ThesisProject{
		Title:       title,
		Description: "description of " + title,
		URLPdf:      "https://files.example.com/" + models.NewID() + ".pdf",
		Status:      models.StatusPending,
		UserID:      author.ID,
	}
	if err := database.DB.Create(&project).Error; err != nil {
		t.Fatalf("Failed to create test project: %v", err)
	}
	return project
}

func createTestCommitteeMember(t *testing.T, reviewer models.User, project models.ThesisProject) models.CommitteeMember {
	t.Helper()

	member := models.CommitteeMember{
		UserID:          reviewer.ID,
		ThesisProjectID: project.ID,
	}
	if err := database.DB.Create(&member).Error; err != nil {
		t.Fatalf("Failed to create test committee member: %v", err)
	}
	return member
}

// newTestClient builds a client without a socket connection; tests read its
// send channel directly and never start the pumps.
func newTestClient(hub *Hub, userID string, role models.Role) *Client {
	return NewClient(hub, nil, userID, role, "test")
}

// waitForMessage reads one broadcast frame from a client's send channel.
func waitForMessage(t *testing.T, client *Client) Message {
	t.Helper()

	select {
	case data := <-client.send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for broadcast")
	}
	return Message{}
}

// assertNoMessage verifies nothing reaches a client within a grace window.
func assertNoMessage(t *testing.T, client *Client) {
	t.Helper()

	select {
	case data := <-client.send:
		t.Fatalf("unexpected broadcast: %s", data)
	case <-time.After(150 * time.Millisecond):
	}
}
