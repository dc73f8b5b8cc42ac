package socketio

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	socket "github.com/zishang520/socket.io/socket"
)

// Authenticator resolves a bearer token to a user id.
type Authenticator func(ctx context.Context, token string) (uuid.UUID, error)

// Server wraps the Socket.IO server. Each authenticated socket joins its
// user room so HTTP handlers can push events to every tab a user has open.
type Server struct {
	io           *socket.Server
	logger       *slog.Logger
	authenticate Authenticator

	connMutex   sync.RWMutex
	connections map[string]uuid.UUID
}

type socketData struct {
	userID uuid.UUID
}

// NewServer creates a new Socket.IO server mounted at /socket.io.
func NewServer(logger *slog.Logger, authenticate Authenticator) *Server {
	opts := socket.DefaultServerOptions()
	opts.SetPingTimeout(60 * time.Second)
	opts.SetPingInterval(25 * time.Second)
	opts.SetServeClient(false)
	opts.SetPath("/socket.io")

	s := &Server{
		io:           socket.NewServer(nil, opts),
		logger:       logger,
		authenticate: authenticate,
		connections:  make(map[string]uuid.UUID),
	}

	s.io.Use(s.connectionMiddleware)
	s.io.On("connection", func(args ...any) {
		sock, ok := args[0].(*socket.Socket)
		if !ok {
			s.logger.Error("unexpected connection payload", slog.Any("payload", args))
			return
		}
		s.handleConnection(sock)
	})

	return s
}

// GetHandler returns the HTTP handler for Socket.IO.
func (s *Server) GetHandler() http.Handler {
	return s.io.ServeHandler(nil)
}

// Notify emits event to every socket of userID. Delivery is best-effort.
func (s *Server) Notify(userID uuid.UUID, event string, payload any) {
	if err := s.io.To(userRoom(userID)).Emit(event, payload); err != nil {
		s.logger.Warn("socket emit failed",
			slog.String("event", event),
			slog.String("userId", userID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// Connections reports the number of live authenticated sockets.
func (s *Server) Connections() int {
	s.connMutex.RLock()
	defer s.connMutex.RUnlock()
	return len(s.connections)
}

// Close shuts down the Socket.IO server.
func (s *Server) Close() error {
	done := make(chan struct{})
	s.io.Close(func() {
		close(done)
	})

	<-done
	return nil
}

func (s *Server) connectionMiddleware(sock *socket.Socket, next func(*socket.ExtendedError)) {
	token := extractToken(sock)
	if token == "" {
		s.logger.Warn("socket connection rejected: missing token")
		next(socket.NewExtendedError("missing authentication token", map[string]any{"code": "MISSING_TOKEN"}))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userID, err := s.authenticate(ctx, token)
	if err != nil {
		s.logger.Warn("socket connection rejected: invalid token", slog.String("error", err.Error()))
		next(socket.NewExtendedError("invalid token", map[string]any{"code": "INVALID_TOKEN"}))
		return
	}

	sock.SetData(&socketData{userID: userID})
	next(nil)
}

func (s *Server) handleConnection(sock *socket.Socket) {
	data, ok := sock.Data().(*socketData)
	if !ok || data == nil {
		s.logger.Error("connection established without user context")
		sock.Disconnect(true)
		return
	}

	connID := string(sock.Id())
	s.connMutex.Lock()
	s.connections[connID] = data.userID
	s.connMutex.Unlock()

	sock.Join(userRoom(data.userID))

	s.logger.Debug("socket connected",
		slog.String("userId", data.userID.String()),
		slog.String("connId", connID),
	)

	if err := sock.Emit("connectionConfirmed", map[string]any{
		"userId":    data.userID.String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		s.logger.Warn("failed to emit connection confirmation", slog.String("error", err.Error()))
	}

	sock.On("disconnect", func(args ...any) {
		s.connMutex.Lock()
		delete(s.connections, connID)
		s.connMutex.Unlock()

		s.logger.Debug("socket disconnected",
			slog.String("userId", data.userID.String()),
			slog.String("connId", connID),
			slog.Any("reason", firstArg(args)),
		)
	})
}

func extractToken(sock *socket.Socket) string {
	if sock == nil {
		return ""
	}

	if hs := sock.Handshake(); hs != nil {
		if authMap, ok := hs.Auth.(map[string]any); ok {
			if token, ok := authMap["token"].(string); ok && token != "" {
				return token
			}
		}
		if hs.Query != nil {
			if token, ok := hs.Query.Get("token"); ok && token != "" {
				return token
			}
		}
	}

	return ""
}

func firstArg(args []any) any {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}

func userRoom(userID uuid.UUID) socket.Room {
	return socket.Room("user_" + userID.String())
}
