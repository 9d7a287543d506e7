// Package dashboard pushes change hints to open browser workspaces.
package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"TmhnaDash/api/constants"
	"TmhnaDash/internal/logger"
)

// Event is one server-sent message.
type Event struct {
	Type  string   `json:"type"`
	Panes []string `json:"panes,omitempty"`
	Page  string   `json:"page,omitempty"`
	Time  string   `json:"time"`
}

type SSEClient struct {
	sessionID string
	writer    http.ResponseWriter
	flusher   http.Flusher
	done      chan struct{}
	mu        sync.Mutex
	closed    bool
	lastPing  time.Time
}

// errClientClosed is returned for writes after the stream handler returned.
var errClientClosed = errors.New("sse client closed")

// SSEServer fans out stale-pane hints. A hint only tells the browser to
// pull the named panes again.
type SSEServer struct {
	mu         sync.RWMutex
	clients    map[string]*SSEClient
	pingTicker *time.Ticker
	stopCh     chan struct{}
	stopOnce   sync.Once
}

func NewSSEServer(pingInterval time.Duration) *SSEServer {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	s := &SSEServer{
		clients: make(map[string]*SSEClient),
		stopCh:  make(chan struct{}),
	}
	s.pingTicker = time.NewTicker(pingInterval)
	go s.pingClients()
	return s
}

// HandleSSE holds the connection for sessionID open until the client goes
// away or the server stops.
func (s *SSEServer) HandleSSE(w http.ResponseWriter, r *http.Request, sessionID string) {
	w.Header().Set(constants.ContentTypeText, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	client := &SSEClient{
		sessionID: sessionID,
		writer:    w,
		flusher:   flusher,
		done:      make(chan struct{}),
		lastPing:  time.Now(),
	}

	s.mu.Lock()
	if existing, exists := s.clients[sessionID]; exists {
		close(existing.done)
	}
	s.clients[sessionID] = client
	s.mu.Unlock()

	s.sendToClient(client, Event{Type: "connected"})

	defer func() {
		client.mu.Lock()
		client.closed = true
		client.mu.Unlock()
		s.mu.Lock()
		if s.clients[sessionID] == client {
			delete(s.clients, sessionID)
		}
		s.mu.Unlock()
	}()

	select {
	case <-client.done:
	case <-r.Context().Done():
	case <-s.stopCh:
	}
}

func (s *SSEServer) sendToClient(client *SSEClient, ev Event) error {
	if ev.Time == "" {
		ev.Time = time.Now().Format(time.RFC3339)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	client.mu.Lock()
	defer client.mu.Unlock()
	if client.closed {
		return errClientClosed
	}
	if _, err := fmt.Fprintf(client.writer, "data: %s\n\n", data); err != nil {
		return err
	}
	client.flusher.Flush()
	if ev.Type == "ping" {
		client.lastPing = time.Now()
	}
	return nil
}

// NotifyStale tells every listed session that panes changed server-side.
func (s *SSEServer) NotifyStale(sessionIDs []string, page string, panes []string) int {
	ev := Event{Type: "stale", Page: page, Panes: panes}
	sent := 0
	for _, id := range sessionIDs {
		s.mu.RLock()
		client, ok := s.clients[id]
		s.mu.RUnlock()
		if !ok {
			continue
		}
		if err := s.sendToClient(client, ev); err != nil {
			if !errors.Is(err, errClientClosed) {
				logger.WithFields(logrus.Fields{"session": id}).WithError(err).Warn("sse send failed")
			}
			s.drop(id, client)
			continue
		}
		sent++
	}
	return sent
}

func (s *SSEServer) drop(id string, c *SSEClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients[id] == c {
		delete(s.clients, id)
		close(c.done)
	}
}

func (s *SSEServer) pingClients() {
	defer s.pingTicker.Stop()
	for {
		select {
		case <-s.pingTicker.C:
			s.mu.RLock()
			clients := make(map[string]*SSEClient, len(s.clients))
			for id, c := range s.clients {
				clients[id] = c
			}
			s.mu.RUnlock()
			for id, c := range clients {
				if err := s.sendToClient(c, Event{Type: "ping"}); err != nil {
					s.drop(id, c)
				}
			}
		case <-s.stopCh:
			return
		}
	}
}

// Connected returns the session ids with an open stream.
func (s *SSEServer) Connected() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.clients))
	for id := range s.clients {
		ids = append(ids, id)
	}
	return ids
}

func (s *SSEServer) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.mu.Lock()
		s.clients = make(map[string]*SSEClient)
		s.mu.Unlock()
	})
}
