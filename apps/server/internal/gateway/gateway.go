package gateway

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"wolfsim/apps/server/internal/lobby"
	"wolfsim/werewolf"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is what spectators receive. The first message on a connection is a
// snapshot carrying every public round so far; each later one is a single
// round that follows the snapshot with no gap. Clients that reconnect should
// still drop a round whose number they already hold.
type Message struct {
	Type   string                 `json:"type"`
	GameID string                 `json:"game_id"`
	Game   *lobby.Summary         `json:"game,omitempty"`
	Rounds []werewolf.RoundRecord `json:"rounds,omitempty"`
}

const (
	MessageSnapshot = "snapshot"
	MessageRound    = "round"
)

// Connection is one spectator socket.
type Connection struct {
	ID      string
	GameID  string
	Conn    *websocket.Conn
	Send    chan []byte
	Gateway *Gateway

	done        chan struct{}
	unsubscribe func()
}

// Gateway pushes round updates to websocket spectators.
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	nextConnID  uint64
	lobby       *lobby.Lobby
}

func New(lby *lobby.Lobby) *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		lobby:       lby,
	}
}

// HandleWebSocket serves /ws?game=ID.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game")
	session, err := g.lobby.Get(gameID)
	if err != nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] Upgrade error: %v", err)
		return
	}

	g.mu.Lock()
	g.nextConnID++
	c := &Connection{
		ID:      fmt.Sprintf("conn_%d", g.nextConnID),
		GameID:  gameID,
		Conn:    conn,
		Send:    make(chan []byte, sendBuffer),
		Gateway: g,
		done:    make(chan struct{}),
	}
	g.connections[c.ID] = c
	total := len(g.connections)
	g.mu.Unlock()

	c.unsubscribe = session.Watch(func(summary lobby.Summary, rounds []werewolf.RoundRecord) {
		snapshot, err := json.Marshal(Message{
			Type:   MessageSnapshot,
			GameID: gameID,
			Game:   &summary,
			Rounds: rounds,
		})
		if err != nil {
			log.Printf("[Gateway] Marshal snapshot failed: %v", err)
			return
		}
		c.Send <- snapshot
	}, c.push)

	log.Printf("[Gateway] Spectator connected: %s game=%s, total: %d", c.ID, gameID, total)

	go c.readPump()
	go c.writePump()
}

// ConnectionCount is the number of open spectator sockets.
func (g *Gateway) ConnectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.connections)
}

// push runs on the advancing goroutine, so it never blocks: a spectator
// whose buffer is full misses the update.
func (c *Connection) push(u lobby.Update) {
	data, err := json.Marshal(Message{
		Type:   MessageRound,
		GameID: u.GameID,
		Rounds: []werewolf.RoundRecord{u.Record},
	})
	if err != nil {
		log.Printf("[Gateway] Marshal round failed: %v", err)
		return
	}
	select {
	case c.Send <- data:
	case <-c.done:
	default:
		log.Printf("[Gateway] Send buffer full, dropping round %d for %s", u.Record.Round, c.ID)
	}
}

// readPump only watches for close and pong frames; spectators send nothing.
func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] Read error: %v", err)
			}
			return
		}
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	if _, ok := g.connections[c.ID]; !ok {
		g.mu.Unlock()
		return
	}
	delete(g.connections, c.ID)
	total := len(g.connections)
	g.mu.Unlock()

	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	close(c.done)
	log.Printf("[Gateway] Spectator disconnected: %s, total: %d", c.ID, total)
}
