package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"emittr/engine/internal/analytics"
	"emittr/engine/internal/engine"
	"emittr/engine/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	LayoutColumns = "columns"
	LayoutRows    = "rows"
)

var ErrUnknownLayout = errors.New("unknown board layout")

type Server struct {
	router        *gin.Engine
	store         storage.Store
	analytics     *analytics.Producer
	maxDifficulty int
	engineOpts    []engine.Option
	connections   map[string]*wsClient
	connMu        sync.RWMutex
}

type Config struct {
	Store         storage.Store
	Analytics     *analytics.Producer
	MaxDifficulty int
	Parallel      bool
	// Seed makes every search reproducible when non-zero. Each request gets
	// its own order source.
	Seed int64
	// EngineOptions are applied after Parallel and Seed. They are shared by
	// concurrent requests and must not carry mutable state such as a
	// WithOrder(SeededOrder(...)).
	EngineOptions []engine.Option
}

// MoveRequest asks for a column. Board is column-major with row 0 at the
// bottom unless Layout is "rows", in which case it is row-major with row 0
// at the top.
type MoveRequest struct {
	Player     int     `json:"player"`
	Difficulty int     `json:"difficulty"`
	Board      [][]int `json:"board"`
	Layout     string  `json:"layout,omitempty"`
}

type MoveResponse struct {
	RequestID string  `json:"requestId"`
	Column    int     `json:"column"`
	Value     float64 `json:"value"`
	Depth     int     `json:"depth"`
	Nodes     int64   `json:"nodes"`
	Cutoffs   int64   `json:"cutoffs"`
	ElapsedMs float64 `json:"elapsedMs"`
}

func New(cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	store := cfg.Store
	if store == nil {
		store = storage.NewMemoryStore()
	}
	opts := []engine.Option{engine.WithParallel(cfg.Parallel)}
	if cfg.Seed != 0 {
		opts = append(opts, engine.WithSeed(cfg.Seed))
	}
	opts = append(opts, cfg.EngineOptions...)
	s := &Server{
		router:        router,
		store:         store,
		analytics:     cfg.Analytics,
		maxDifficulty: cfg.MaxDifficulty,
		engineOpts:    opts,
		connections:   make(map[string]*wsClient),
	}

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.POST("/move", s.handleMove)
	router.GET("/stats", s.handleStats)
	router.GET("/ws", s.handleWS)
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http-request")
	}
}

func (s *Server) handleMove(c *gin.Context) {
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := s.pickMove(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrNoMoves):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrInvalidPlayer),
		errors.Is(err, engine.ErrMalformedBoard),
		errors.Is(err, ErrUnknownLayout):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) handleStats(c *gin.Context) {
	rows, err := s.store.GetDifficultyStats(c.Request.Context(), 10)
	if err != nil {
		log.Error().Err(err).Msg("stats-query-failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}
	if rows == nil {
		rows = []storage.DifficultyStats{}
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) rack(req MoveRequest) (*engine.Rack, error) {
	switch req.Layout {
	case "", LayoutColumns:
		return engine.FromColumns(req.Board)
	case LayoutRows:
		return engine.FromRows(req.Board)
	}
	return nil, errors.Wrapf(ErrUnknownLayout, "%q", req.Layout)
}

func (s *Server) pickMove(ctx context.Context, req MoveRequest) (MoveResponse, error) {
	rack, err := s.rack(req)
	if err != nil {
		return MoveResponse{}, err
	}
	difficulty := req.Difficulty
	if s.maxDifficulty > 0 && difficulty > s.maxDifficulty {
		log.Info().
			Int("requested", difficulty).
			Int("max", s.maxDifficulty).
			Msg("difficulty-capped")
		difficulty = s.maxDifficulty
	}
	player, err := engine.PlayerFromInt(req.Player)
	if err != nil {
		return MoveResponse{}, err
	}
	computer, err := engine.NewComputerPlayer(player, difficulty, s.engineOpts...)
	if err != nil {
		return MoveResponse{}, err
	}

	start := time.Now()
	res, err := computer.Analyze(ctx, rack)
	if err != nil {
		return MoveResponse{}, err
	}
	elapsed := time.Since(start)

	out := MoveResponse{
		RequestID: uuid.NewString(),
		Column:    res.Column,
		Value:     res.Value,
		Depth:     res.Depth,
		Nodes:     res.Nodes,
		Cutoffs:   res.Cutoffs,
		ElapsedMs: float64(elapsed) / float64(time.Millisecond),
	}
	s.record(ctx, computer, out, elapsed)
	return out, nil
}

func (s *Server) record(ctx context.Context, computer *engine.ComputerPlayer, res MoveResponse, elapsed time.Duration) {
	err := s.store.SaveDecision(ctx, storage.Decision{
		ID:         res.RequestID,
		Player:     int(computer.Player()),
		Difficulty: computer.Difficulty(),
		Column:     res.Column,
		Value:      res.Value,
		Nodes:      res.Nodes,
		Cutoffs:    res.Cutoffs,
		Elapsed:    elapsed,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		log.Warn().Err(err).Str("requestId", res.RequestID).Msg("save-decision-failed")
	}
	s.analytics.Publish(ctx, analytics.EventMovePicked, map[string]any{
		"requestId":  res.RequestID,
		"player":     int(computer.Player()),
		"difficulty": computer.Difficulty(),
		"column":     res.Column,
		"value":      res.Value,
		"nodes":      res.Nodes,
		"elapsedMs":  res.ElapsedMs,
	})
}

type wsClient struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	server *Server
}

type wsMessage struct {
	Type string `json:"type"`
	MoveRequest
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (s *Server) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	client := &wsClient{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, 8),
		server: s,
	}
	s.register(client)

	go client.writePump()
	go client.readPump()
}

func (s *Server) register(c *wsClient) {
	s.connMu.Lock()
	s.connections[c.id] = c
	s.connMu.Unlock()
	log.Debug().Str("client", c.id).Msg("ws-connected")
}

func (s *Server) unregister(c *wsClient) {
	s.connMu.Lock()
	delete(s.connections, c.id)
	s.connMu.Unlock()
	close(c.send)
	log.Debug().Str("client", c.id).Msg("ws-disconnected")
}

// Connections reports the number of open websocket clients.
func (s *Server) Connections() int {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	return len(s.connections)
}

func (c *wsClient) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *wsClient) readPump() {
	defer c.server.unregister(c)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendJSON(gin.H{"type": "error", "message": "invalid json"})
			continue
		}
		if msg.Type != "move" {
			c.sendJSON(gin.H{"type": "error", "message": "unknown message type"})
			continue
		}
		res, err := c.server.pickMove(context.Background(), msg.MoveRequest)
		if err != nil {
			c.sendJSON(gin.H{"type": "error", "message": err.Error()})
			continue
		}
		c.sendJSON(gin.H{"type": "move", "result": res})
	}
}

func (c *wsClient) sendJSON(v any) {
	data, _ := json.Marshal(v)
	select {
	case c.send <- data:
	default:
		log.Warn().Str("client", c.id).Msg("ws-send-dropped")
	}
}
