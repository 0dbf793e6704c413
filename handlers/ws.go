package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/thesisportal/backend/database"
	"github.com/thesisportal/backend/models"
	"github.com/thesisportal/backend/services"
)

// SessionCookieName is the cookie carrying the session id, set at login.
const SessionCookieName = "auth_session"

var (
	hub      *services.Hub
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return true // CORS is allow-all for now
		},
	}
)

// SetHub sets the hub for the handlers
func SetHub(h *services.Hub) {
	hub = h
}

// HandleWebSocket resolves the connection's identity from its session cookie,
// upgrades it, and subscribes it to the comment topic and its own projects
// topic. Connections without a valid session are rejected before the upgrade.
func HandleWebSocket(c *gin.Context) {
	if hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Hub not initialized"})
		return
	}

	user, err := resolveSession(c)
	if err != nil {
		log.Printf("⚠️ Rejected socket from %s: %v", c.ClientIP(), err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("⚠️ WebSocket upgrade failed: %v", err)
		return
	}

	client := services.NewClient(hub, conn, user.ID, user.Role, c.ClientIP())

	hub.Register(client)
	for _, topic := range []string{services.TopicComment, services.ProjectsTopic(user.ID)} {
		if err := hub.Subscribe(client, topic); err != nil {
			// An open connection with no subscriptions is useless, drop it.
			log.Printf("⚠️ Subscribe to topic %s failed, closing socket: %v", topic, err)
			hub.Unregister(client)
			conn.Close()
			return
		}
	}

	// Start goroutines for reading and writing
	go client.WritePump()
	go client.ReadPump()
}

// resolveSession looks the session cookie up against the sessions table.
func resolveSession(c *gin.Context) (*models.User, error) {
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil || sessionID == "" {
		return nil, errors.New("missing session cookie")
	}

	var session models.Session
	if err := database.DB.First(&session, "id = ?", sessionID).Error; err != nil {
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, errors.New("session expired")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", session.UserID).Error; err != nil {
		return nil, fmt.Errorf("session user lookup failed: %w", err)
	}
	return &user, nil
}

// GetHubStats returns hub statistics
func GetHubStats(c *gin.Context) {
	if hub == nil {
		c.JSON(http.StatusOK, gin.H{
			"enabled": false,
		})
		return
	}

	stats := hub.Stats()
	c.JSON(http.StatusOK, gin.H{
		"enabled":      true,
		"clients":      stats.Clients,
		"topics":       stats.Topics,
		"activeTopics": stats.ActiveTopics,
	})
}
