package player

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Status is the connection status of a player within a match.
type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
)

// Conn abstracts the websocket connection so sessions can be exercised with
// fakes in tests.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// Player represents one live connection bound (or binding) into a match.
// A reconnecting player is a fresh Player value carrying the same ID.
type Player struct {
	ID       int64
	Nickname string
	Conn     Conn

	mu       sync.Mutex
	status   Status
	lastSeen time.Time
}

// New wraps a connection for a validated player identity.
func New(id int64, nickname string, conn Conn) *Player {
	return &Player{
		ID:       id,
		Nickname: nickname,
		Conn:     conn,
		status:   StatusConnected,
		lastSeen: time.Now(),
	}
}

// Send writes a text frame to the player's connection. Writes are serialized
// because the session broadcast path and the handler's error replies run on
// different goroutines.
func (p *Player) Send(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Conn.WriteMessage(websocket.TextMessage, data)
}

// Ping writes a ping control frame, sharing the write lock with Send.
func (p *Player) Ping() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Conn.WriteMessage(websocket.PingMessage, nil)
}

// Status returns the player's current connection status.
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// MarkDisconnected records that the transport for this player has closed.
func (p *Player) MarkDisconnected() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = StatusDisconnected
	p.lastSeen = time.Now()
}
