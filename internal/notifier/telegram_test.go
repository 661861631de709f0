package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTelegram struct {
	mu       sync.Mutex
	sent     []string
	polls    int
	failSend bool
	onSend   func()
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.URL.Path {
	case "/botTOKEN/sendMessage":
		if f.failSend {
			http.Error(w, `{"ok":false}`, http.StatusBadRequest)
			return
		}
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		f.sent = append(f.sent, payload["text"])
		fmt.Fprint(w, `{"ok":true}`)
		if f.onSend != nil {
			f.onSend()
		}
	case "/botTOKEN/getUpdates":
		f.polls++
		if f.polls == 1 {
			fmt.Fprint(w, `{"ok":true,"result":[
				{"update_id":6,"message":{"text":"/reset","chat":{"id":99}}},
				{"update_id":7,"message":{"text":" /status ","chat":{"id":42}}}
			]}`)
			return
		}
		fmt.Fprint(w, `{"ok":true,"result":[]}`)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeTelegram) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newTestNotifier(url string) *TelegramNotifier {
	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.BaseURL = url
	return tn
}

func TestTelegramNotifier_Publish(t *testing.T) {
	fake := &fakeTelegram{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	tn := newTestNotifier(srv.URL)
	require.NoError(t, tn.Publish(context.Background(), sampleSnapshot()))

	sent := fake.messages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "Relative Rotation")
}

func TestTelegramNotifier_SendWithRetryGivesUp(t *testing.T) {
	fake := &fakeTelegram{failSend: true}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	tn := newTestNotifier(srv.URL)
	tn.Backoff = func(int) time.Duration { return time.Millisecond }
	err := tn.SendWithRetry(context.Background(), "hello", 2)
	assert.ErrorContains(t, err, "status 400")
	assert.ErrorContains(t, err, "after 3 attempts")
}

func TestTelegramNotifier_SendWithRetryHonoursContext(t *testing.T) {
	fake := &fakeTelegram{failSend: true}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	tn := newTestNotifier(srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := tn.SendWithRetry(ctx, "hello", 3)
	assert.Error(t, err)
}

func TestTelegramNotifier_PollingDispatchesCommands(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := &fakeTelegram{onSend: cancel}
	srv := httptest.NewServer(fake)
	defer srv.Close()
	tn := newTestNotifier(srv.URL)

	var got []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		tn.StartPolling(ctx, func(_ context.Context, cmd string) string {
			got = append(got, cmd)
			return "reply to " + cmd
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
	assert.Equal(t, []string{"/status"}, got, "commands from other chats are ignored")
	sent := fake.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "reply to /status", sent[0])
}
