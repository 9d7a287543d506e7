package dashboard

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyStaleReachesConnectedSession(t *testing.T) {
	s := NewSSEServer(time.Hour)
	defer s.Stop()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.HandleSSE(w, r, r.URL.Query().Get("sid"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"?sid=abc", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	readEvent := func() Event {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				var ev Event
				require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
				return ev
			}
		}
	}
	assert.Equal(t, "connected", readEvent().Type)

	require.Eventually(t, func() bool { return len(s.Connected()) == 1 }, time.Second, 10*time.Millisecond)
	sent := s.NotifyStale([]string{"abc", "missing"}, "financial", []string{"submissions"})
	assert.Equal(t, 1, sent)

	ev := readEvent()
	assert.Equal(t, "stale", ev.Type)
	assert.Equal(t, "financial", ev.Page)
	assert.Equal(t, []string{"submissions"}, ev.Panes)
}

func TestNoWriteAfterStreamEnds(t *testing.T) {
	s := NewSSEServer(time.Hour)
	defer s.Stop()

	rec := httptest.NewRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	done := make(chan struct{})
	go func() {
		s.HandleSSE(rec, req, "abc")
		close(done)
	}()

	var client *SSEClient
	require.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		client = s.clients["abc"]
		return client != nil
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	written := rec.Body.Len()

	assert.ErrorIs(t, s.sendToClient(client, Event{Type: "stale"}), errClientClosed)
	assert.Equal(t, written, rec.Body.Len())
	assert.Zero(t, s.NotifyStale([]string{"abc"}, "financial", []string{"history"}))
}
