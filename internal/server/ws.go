package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"pixelprobe/internal/logger"
	"pixelprobe/internal/pipeline"
	"pixelprobe/internal/worker"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing reply buffer depth.
	sendBufSize = 16

	// maxImageBytes caps the request body accepted by the image endpoint.
	maxImageBytes = 64 << 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Allow all origins; callers should apply CORS at the reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server exposes the worker over HTTP: a websocket endpoint speaking the
// typed request/reply envelopes, and a convenience endpoint that accepts an
// encoded image and histograms its pixel intensities.
type Server struct {
	dispatcher *worker.Dispatcher
	loader     *pipeline.Loader
	logger     logger.Logger

	httpServer      *http.Server
	shutdownTimeout time.Duration

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// New creates a Server listening on port once ListenAndServe is called.
func New(log logger.Logger, dispatcher *worker.Dispatcher, loader *pipeline.Loader, port int, shutdownTimeout time.Duration) *Server {
	s := &Server{
		dispatcher:      dispatcher,
		loader:          loader,
		logger:          log,
		shutdownTimeout: shutdownTimeout,
		conns:           make(map[*websocket.Conn]struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/worker", s.handleWorker)
	mux.HandleFunc("/histogram", s.handleImage)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe blocks serving requests until Shutdown is called or the
// listener fails.
func (s *Server) ListenAndServe() error {
	s.logger.Info("Server", "listening", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests within the configured timeout and
// closes all active websocket connections.
func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.mu.Lock()
	for conn := range s.conns {
		deadline := time.Now().Add(writeTimeout)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), deadline) //nolint:errcheck
		conn.Close()
		delete(s.conns, conn)
	}
	s.mu.Unlock()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warning("Server", "shutdown did not complete cleanly", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// handleWorker upgrades the connection and serves the message boundary.
// Each text frame is one request; replies are written in request order on
// the same connection, which lets callers correlate by position.
func (s *Server) handleWorker(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	s.register(conn)
	defer s.unregister(conn)

	s.logger.Debug("Server", "worker connection opened", map[string]interface{}{
		"remote": conn.RemoteAddr().String(),
	})

	send := make(chan []byte, sendBufSize)
	done := make(chan struct{})
	go s.writePump(conn, send, done)
	defer close(send)

	conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck

		var req worker.Request
		if err := json.Unmarshal(data, &req); err != nil {
			s.logger.Warning("Server", "discarding malformed request frame", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}

		resp, ok := s.dispatcher.Dispatch(req)
		if !ok {
			continue
		}

		reply, err := json.Marshal(resp)
		if err != nil {
			s.logger.Error("Server", fmt.Errorf("encoding reply: %w", err), nil)
			continue
		}

		select {
		case send <- reply:
		case <-done:
			return
		}
	}
}

// handleImage accepts an encoded image body, extracts its grayscale pixel
// intensities and replies with the histogram envelope. The bins query
// parameter selects the bucket count.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	samples, err := s.loader.SamplesFromReader(r.Body)
	if err != nil {
		s.logger.Warning("Server", "image decode failed", map[string]interface{}{
			"error": err.Error(),
		})
		http.Error(w, "undecodable image", http.StatusBadRequest)
		return
	}

	req := worker.Request{Type: worker.TypeComputeHistogram, Data: samples}
	if binsParam := r.URL.Query().Get("bins"); binsParam != "" {
		bins, err := strconv.Atoi(binsParam)
		if err != nil || bins <= 0 {
			http.Error(w, "bins must be a positive integer", http.StatusBadRequest)
			return
		}
		req.Options = &worker.Options{Bins: bins}
	}

	resp, ok := s.dispatcher.Dispatch(req)
	if !ok {
		http.Error(w, "request rejected", http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("Server", fmt.Errorf("writing response: %w", err), nil)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok")) //nolint:errcheck
}

func (s *Server) register(conn *websocket.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) unregister(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
}

// writePump drains the reply channel onto the connection and sends periodic
// ping frames. Runs in its own goroutine per connection; done is closed when
// the pump exits so the reader stops enqueueing.
func (s *Server) writePump(conn *websocket.Conn, send <-chan []byte, done chan<- struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(done)
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
			if !ok {
				// Reader is gone; say goodbye.
				conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
