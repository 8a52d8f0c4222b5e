package relay

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/talentloop/talentloop-server/pkg/logger"
)

// Server accepts the bot process's websocket connection and pumps its
// frames through the translator
type Server struct {
	registry   *Registry
	translator *Translator
	upgrader   websocket.Upgrader
	logger     *logger.Logger
}

// NewServer creates a new relay websocket server
func NewServer(registry *Registry, translator *Translator, log *logger.Logger) *Server {
	return &Server{
		registry:   registry,
		translator: translator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
		logger: log.Named("relay-server"),
	}
}

// HandleConnection upgrades the bot connection and registers it as the
// active relay handle
func (s *Server) HandleConnection(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("Handling new bot connection request",
		logger.String("remote_addr", r.RemoteAddr))

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection",
			logger.Error(err),
			logger.String("remote_addr", r.RemoteAddr))
		return
	}

	client := &botClient{conn: conn}
	s.registry.Register(client)

	go s.readPump(client)
}

// readPump reads frames from the bot connection until it closes
func (s *Server) readPump(c *botClient) {
	defer func() {
		s.registry.Unregister(c)
		c.conn.Close()
		s.logger.Info("Bot connection closed")
	}()

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("Bot connection read error", logger.Error(err))
			}
			return
		}

		s.translator.HandleFrame(frame)
	}
}

// botClient wraps a websocket connection with a write mutex so concurrent
// Forward calls never interleave frames
type botClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *botClient) WriteMessage(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}
