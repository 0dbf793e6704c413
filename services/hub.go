// Package services provides business logic services
package services

import (
	"fmt"
	"log"
	"sync"

	"github.com/nats-io/nats.go"
)

// TopicComment is the single shared topic carrying comment-list broadcasts.
const TopicComment = "comment"

// subjectPrefix namespaces hub topics on the NATS side.
const subjectPrefix = "portal."

// ProjectsTopic returns the per-user topic carrying project-list broadcasts.
func ProjectsTopic(userID string) string {
	return "projects-" + userID
}

// Hub owns the topic registry: for each topic name, the set of connected
// subscribers. Broadcasts travel through NATS so every instance sharing the
// broker delivers them to its local subscribers.
type Hub struct {
	natsConn *nats.Conn

	clients   map[*Client]bool
	clientsMu sync.RWMutex

	topics   map[string]*topicSubscription
	topicsMu sync.RWMutex

	register   chan *Client
	unregister chan *Client
}

// topicSubscription tracks one topic's local subscribers and its NATS leg.
type topicSubscription struct {
	name      string
	natsSub   *nats.Subscription
	members   map[*Client]bool
	membersMu sync.RWMutex
}

// NewHub creates a new hub
func NewHub(natsConn *nats.Conn) *Hub {
	return &Hub{
		natsConn:   natsConn,
		clients:    make(map[*Client]bool),
		topics:     make(map[string]*topicSubscription),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub and every topic it joined
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	log.Println("📺 Portal hub started")

	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			h.clients[client] = true
			h.clientsMu.Unlock()
			log.Printf("📺 Client connected: %s (user %s, role %s)", client.remoteAddr, client.userID, client.role)

		case client := <-h.unregister:
			h.clientsMu.Lock()
			_, registered := h.clients[client]
			delete(h.clients, client)
			h.clientsMu.Unlock()

			if !registered {
				continue
			}

			client.topicsMu.Lock()
			topics := make([]string, 0, len(client.topics))
			for topic := range client.topics {
				topics = append(topics, topic)
			}
			client.topics = make(map[string]bool)
			client.topicsMu.Unlock()

			h.topicsMu.Lock()
			for _, topic := range topics {
				h.removeMember(client, topic)
			}
			h.topicsMu.Unlock()

			// Detach from every topic before closing send: removeMember
			// excludes a concurrent deliver on the same topic, so once the
			// loop is done nothing can write to this channel again.
			close(client.send)

			log.Printf("📺 Client disconnected: %s", client.remoteAddr)
		}
	}
}

// Subscribe adds a client to a topic, creating the topic's NATS subscription
// on its first local subscriber.
func (h *Hub) Subscribe(client *Client, topic string) error {
	h.topicsMu.Lock()
	defer h.topicsMu.Unlock()

	sub, exists := h.topics[topic]
	if !exists {
		sub = &topicSubscription{
			name:    topic,
			members: make(map[*Client]bool),
		}

		natsSub, err := h.natsConn.Subscribe(subjectPrefix+topic, func(msg *nats.Msg) {
			h.deliver(topic, msg.Data)
		})
		if err != nil {
			return fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
		}
		sub.natsSub = natsSub

		h.topics[topic] = sub
		log.Printf("📺 Created topic %s", topic)
	}

	sub.membersMu.Lock()
	sub.members[client] = true
	sub.membersMu.Unlock()

	client.topicsMu.Lock()
	client.topics[topic] = true
	client.topicsMu.Unlock()

	return nil
}

// Unsubscribe removes a client from a topic
func (h *Hub) Unsubscribe(client *Client, topic string) {
	h.topicsMu.Lock()
	h.removeMember(client, topic)
	h.topicsMu.Unlock()

	client.topicsMu.Lock()
	delete(client.topics, topic)
	client.topicsMu.Unlock()
}

// removeMember detaches a client from a topic hub-side and tears the topic
// down when its last subscriber leaves. Callers hold topicsMu.
func (h *Hub) removeMember(client *Client, topic string) {
	sub, exists := h.topics[topic]
	if !exists {
		return
	}

	sub.membersMu.Lock()
	delete(sub.members, client)
	memberCount := len(sub.members)
	sub.membersMu.Unlock()

	if memberCount == 0 {
		if sub.natsSub != nil {
			sub.natsSub.Unsubscribe()
		}
		delete(h.topics, topic)
		log.Printf("📺 Removed topic %s (no subscribers)", topic)
	}
}

// Broadcast publishes a serialized payload to every subscriber of a topic,
// on this instance and any other sharing the broker.
func (h *Hub) Broadcast(topic string, payload []byte) error {
	if err := h.natsConn.Publish(subjectPrefix+topic, payload); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}
	return nil
}

// deliver fans a payload out to the topic's local subscribers.
func (h *Hub) deliver(topic string, payload []byte) {
	h.topicsMu.RLock()
	sub, exists := h.topics[topic]
	h.topicsMu.RUnlock()

	if !exists {
		return
	}

	sub.membersMu.RLock()
	for client := range sub.members {
		select {
		case client.send <- payload:
		default:
			// Client buffer full, drop
		}
	}
	sub.membersMu.RUnlock()
}

// HubStats holds hub statistics
type HubStats struct {
	Clients      int      `json:"clients"`
	Topics       int      `json:"topics"`
	ActiveTopics []string `json:"activeTopics"`
}

func (h *Hub) Stats() HubStats {
	h.clientsMu.RLock()
	clientCount := len(h.clients)
	h.clientsMu.RUnlock()

	h.topicsMu.RLock()
	topics := make([]string, 0, len(h.topics))
	for name := range h.topics {
		topics = append(topics, name)
	}
	h.topicsMu.RUnlock()

	return HubStats{
		Clients:      clientCount,
		Topics:       len(topics),
		ActiveTopics: topics,
	}
}
