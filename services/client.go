package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/thesisportal/backend/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024

	// Send buffer size
	sendBufferSize = 256
)

// Message is a socket frame: a discriminating type plus a payload.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client represents one socket connection with a resolved identity.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	topics   map[string]bool
	topicsMu sync.RWMutex

	userID     string
	role       models.Role
	remoteAddr string
}

// NewClient creates a new client
func NewClient(hub *Hub, conn *websocket.Conn, userID string, role models.Role, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufferSize),
		topics:     make(map[string]bool),
		userID:     userID,
		role:       role,
		remoteAddr: remoteAddr,
	}
}

// ReadPump pumps messages from the WebSocket connection into the dispatcher
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("⚠️ WebSocket error: %v", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type getCommentsPayload struct {
	ProjectID string `json:"projectId"`
}

type createCommentPayload struct {
	ProjectID string `json:"projectId"`
	Content   string `json:"content"`
	UserID    string `json:"userId"`
}

type getProjectsPayload struct {
	UserAuthID   string `json:"userAuthId"`
	UserAuthRole string `json:"userAuthRole"`
}

type createProjectPayload struct {
	UserAuthID   string  `json:"userAuthId"`
	UserAuthRole string  `json:"userAuthRole"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	URLImg       *string `json:"urlImg"`
	URLPdf       string  `json:"urlPdf"`
}

type userLikePayload struct {
	UserID    string `json:"userId"`
	ProjectID string `json:"projectId"`
}

// handleMessage dispatches one inbound frame. Malformed frames and storage
// failures are logged and the connection stays open.
func (c *Client) handleMessage(raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Printf("⚠️ Invalid message from %s: %v", c.remoteAddr, err)
		return
	}

	switch msg.Type {
	case "get-comments":
		var payload getCommentsPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.ProjectID == "" {
			log.Printf("⚠️ Invalid get-comments payload from %s", c.remoteAddr)
			return
		}
		c.publishComments(payload.ProjectID)

	case "create-comment":
		var payload createCommentPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil ||
			payload.ProjectID == "" || payload.UserID == "" || payload.Content == "" {
			log.Printf("⚠️ Invalid create-comment payload from %s", c.remoteAddr)
			return
		}
		if err := CreateComment(CreateCommentInput{
			ProjectID: payload.ProjectID,
			UserID:    payload.UserID,
			Content:   payload.Content,
		}); err != nil {
			log.Printf("⚠️ Failed to create comment on %s: %v", payload.ProjectID, err)
			return
		}
		c.publishComments(payload.ProjectID)

	case "get-projects":
		var payload getProjectsPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil ||
			payload.UserAuthID == "" || payload.UserAuthRole == "" {
			log.Printf("⚠️ Invalid get-projects payload from %s", c.remoteAddr)
			return
		}
		c.publishProjects(payload.UserAuthID, models.Role(payload.UserAuthRole))

	case "create-project":
		var payload createProjectPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil ||
			payload.UserAuthID == "" || payload.Title == "" || payload.URLPdf == "" {
			log.Printf("⚠️ Invalid create-project payload from %s", c.remoteAddr)
			return
		}
		if err := CreateProject(CreateProjectInput{
			UserID:      payload.UserAuthID,
			Title:       payload.Title,
			Description: payload.Description,
			URLPdf:      payload.URLPdf,
			URLImg:      payload.URLImg,
		}); err != nil {
			log.Printf("⚠️ Failed to create project for %s: %v", payload.UserAuthID, err)
		}

	case "create-user-like":
		var payload userLikePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil ||
			payload.UserID == "" || payload.ProjectID == "" {
			log.Printf("⚠️ Invalid create-user-like payload from %s", c.remoteAddr)
			return
		}
		if err := CreateUserLike(payload.UserID, payload.ProjectID); err != nil {
			log.Printf("⚠️ Failed to create like on %s: %v", payload.ProjectID, err)
		}

	case "delete-user-like":
		var payload userLikePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil ||
			payload.UserID == "" || payload.ProjectID == "" {
			log.Printf("⚠️ Invalid delete-user-like payload from %s", c.remoteAddr)
			return
		}
		if err := DeleteUserLike(payload.UserID, payload.ProjectID); err != nil {
			log.Printf("⚠️ Failed to delete like on %s: %v", payload.ProjectID, err)
		}

	default:
		log.Printf("⚠️ Unknown message type from %s: %s", c.remoteAddr, msg.Type)
	}
}

// publishComments re-fetches the authoritative comment list for a project and
// broadcasts it to the shared comment topic.
func (c *Client) publishComments(projectID string) {
	comments, err := GetCommentsByProjectID(projectID)
	if err != nil {
		log.Printf("⚠️ Failed to load comments for %s: %v", projectID, err)
		return
	}
	c.broadcast(TopicComment, "get-comments", comments)
}

// publishProjects re-fetches the role-scoped project list and broadcasts it
// to the payload subject's topic.
func (c *Client) publishProjects(userID string, role models.Role) {
	projects, err := FindProjectsByUser(userID, role)
	if err != nil {
		log.Printf("⚠️ Failed to load projects for %s: %v", userID, err)
		return
	}
	c.broadcast(ProjectsTopic(userID), "get-projects", projects)
}

func (c *Client) broadcast(topic, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("⚠️ Failed to serialize %s payload: %v", msgType, err)
		return
	}
	frame, err := json.Marshal(Message{Type: msgType, Payload: data})
	if err != nil {
		log.Printf("⚠️ Failed to serialize %s frame: %v", msgType, err)
		return
	}
	if err := c.hub.Broadcast(topic, frame); err != nil {
		log.Printf("⚠️ Broadcast to %s failed: %v", topic, err)
	}
}
