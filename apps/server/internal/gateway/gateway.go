// Package gateway owns the websocket edge: it authenticates the
// connection, decodes client frames and routes commands into the user's
// session actor.
package gateway

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"blackjack-lite/apps/server/internal/auth"
	"blackjack-lite/apps/server/internal/codec"
	"blackjack-lite/apps/server/internal/lobby"
	"blackjack-lite/apps/server/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: Restrict in production
	},
}

type Connection struct {
	ID       string
	UserID   uint64
	Username string
	Conn     *websocket.Conn
	Send     chan []byte
	Gateway  *Gateway

	serverSeq uint64
}

type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	userConns   map[uint64]*Connection
	nextConnID  uint64

	auth  auth.Service
	lobby *lobby.Lobby
	log   *logrus.Logger
}

func New(authService auth.Service, lby *lobby.Lobby, logger *logrus.Logger) *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		userConns:   make(map[uint64]*Connection),
		auth:        authService,
		lobby:       lby,
		log:         logger,
	}
}

// HandleWebSocket upgrades the request after validating the session
// token carried in the token query parameter or Authorization header.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = auth.BearerToken(r.Header.Get("Authorization"))
	}
	userID, username, ok := g.auth.ResolveSession(token)
	if !ok {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	g.mu.Lock()
	g.nextConnID++
	connID := fmt.Sprintf("conn_%d", g.nextConnID)
	if prev, exists := g.userConns[userID]; exists {
		// One connection per account: the newer one wins.
		prev.Conn.Close()
		delete(g.connections, prev.ID)
	}
	c := &Connection{
		ID:       connID,
		UserID:   userID,
		Username: username,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Gateway:  g,
	}
	g.connections[connID] = c
	g.userConns[userID] = c
	total := len(g.connections)
	g.mu.Unlock()

	g.log.WithFields(logrus.Fields{
		"conn":  connID,
		"user":  userID,
		"total": total,
	}).Info("client connected")

	go c.readPump()
	go c.writePump()
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(65536)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Gateway.log.WithError(err).Debug("websocket read error")
			}
			break
		}

		if messageType == websocket.TextMessage {
			c.handleMessage(message)
		}
	}
}

func (c *Connection) handleMessage(data []byte) {
	env, err := codec.DecodeClient(data)
	if err != nil {
		c.sendError(0, "bad_envelope", "invalid message format")
		return
	}

	c.Gateway.log.WithFields(logrus.Fields{
		"user": c.UserID,
		"type": env.Type,
		"seq":  env.Seq,
	}).Debug("client frame")

	if env.Type == codec.TypeStartRun {
		c.handleStartRun(env)
		return
	}

	s := c.Gateway.lobby.Session(c.UserID)
	if s == nil {
		c.sendError(env.Seq, "no_run", "no active run")
		return
	}

	event, err := c.eventFromEnvelope(env)
	if err != nil {
		c.sendError(env.Seq, "bad_request", err.Error())
		return
	}
	if err := s.Dispatch(event); err != nil {
		c.sendError(env.Seq, "rejected", err.Error())
	}
}

func (c *Connection) eventFromEnvelope(env codec.ClientEnvelope) (session.Event, error) {
	switch env.Type {
	case codec.TypeBet:
		var req codec.BetRequest
		if err := codec.DecodePayload(env.Payload, &req); err != nil {
			return session.Event{}, err
		}
		return session.Event{Type: session.EventBet, Amount: req.Amount}, nil
	case codec.TypeMove:
		var req codec.MoveRequest
		if err := codec.DecodePayload(env.Payload, &req); err != nil {
			return session.Event{}, err
		}
		move, err := session.ParseMove(req.Move)
		if err != nil {
			return session.Event{}, err
		}
		return session.Event{Type: session.EventMove, Move: move}, nil
	case codec.TypeStartCombat:
		var req codec.StartCombatRequest
		if err := codec.DecodePayload(env.Payload, &req); err != nil {
			return session.Event{}, err
		}
		return session.Event{Type: session.EventStartCombat, Enemy: req.Enemy}, nil
	case codec.TypeDrawEncounter:
		return session.Event{Type: session.EventDrawEncounter}, nil
	case codec.TypeRerollEvent:
		return session.Event{Type: session.EventRerollEvent}, nil
	case codec.TypeChoice:
		var req codec.ChoiceRequest
		if err := codec.DecodePayload(env.Payload, &req); err != nil {
			return session.Event{}, err
		}
		return session.Event{Type: session.EventChoice, Choice: req.Choice}, nil
	case codec.TypeRerollTrinket:
		var req codec.RerollTrinketRequest
		if err := codec.DecodePayload(env.Payload, &req); err != nil {
			return session.Event{}, err
		}
		return session.Event{Type: session.EventRerollTrinket, Slot: req.Slot}, nil
	case codec.TypeResync:
		return session.Event{Type: session.EventResync}, nil
	default:
		return session.Event{}, fmt.Errorf("unknown message type %q", env.Type)
	}
}

func (c *Connection) handleStartRun(env codec.ClientEnvelope) {
	var req codec.StartRunRequest
	if err := codec.DecodePayload(env.Payload, &req); err != nil {
		c.sendError(env.Seq, "bad_request", "invalid start run payload")
		return
	}
	class, err := session.ParseClass(req.Class)
	if err != nil {
		c.sendError(env.Seq, "bad_request", err.Error())
		return
	}

	s, err := c.Gateway.lobby.StartRun(c.UserID, c.Username, class, req.Seed, c.enqueue)
	if err != nil {
		c.sendError(env.Seq, "start_failed", err.Error())
		return
	}
	// Push the opening snapshot so the client renders immediately.
	_ = s.Dispatch(session.Event{Type: session.EventResync})
}

// enqueue hands a frame to the write pump, dropping it when the client
// cannot keep up.
func (c *Connection) enqueue(data []byte) {
	select {
	case c.Send <- data:
	default:
	}
}

func (c *Connection) sendError(seq uint64, code, msg string) {
	data, err := codec.EncodeServer(codec.TypeError, atomic.AddUint64(&c.serverSeq, 1), codec.ErrorResponse{
		Code:      code,
		Message:   msg,
		ClientSeq: seq,
	})
	if err != nil {
		return
	}
	c.enqueue(data)
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.connections, c.ID)
	if g.userConns[c.UserID] == c {
		delete(g.userConns, c.UserID)
	}
	g.log.WithFields(logrus.Fields{
		"conn":  c.ID,
		"total": len(g.connections),
	}).Info("client disconnected")
}

// BroadcastToUser sends a frame to a specific user's connection.
func (g *Gateway) BroadcastToUser(userID uint64, data []byte) {
	g.mu.RLock()
	c := g.userConns[userID]
	g.mu.RUnlock()

	if c != nil {
		c.enqueue(data)
	}
}
