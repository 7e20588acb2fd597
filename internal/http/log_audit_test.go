package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type logEntry struct {
	Level     string         `json:"level"`
	Action    string         `json:"action"`
	UserID    string         `json:"user_id"`
	LatencyMs *int64         `json:"latency_ms"`
	Fields    map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf lockedBuf
	oldW, oldFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findAction(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

func TestMutationsAreAudited(t *testing.T) {
	a := newAPI(t)
	sid := a.user("alice@example.com")
	homeID := a.home(sid)
	pid := a.product(sid, homeID, "Penne")

	entries := captureLogs(t, func() {
		a.call("POST", "/product-batches/bulk", sid, map[string]any{"productId": pid, "homeId": homeID, "quantity": 2})
		a.call("POST", "/product-batches/consume", sid, map[string]any{"productId": pid, "homeId": homeID, "quantity": 1})
	})

	e, ok := findAction(entries, "batch.consume")
	if assert.True(t, ok, "consume audit line") {
		assert.Equal(t, "audit", e.Level)
		assert.NotEmpty(t, e.UserID)
		assert.NotNil(t, e.LatencyMs)
		assert.EqualValues(t, 1, e.Fields["quantity"])
	}
	_, ok = findAction(entries, "batch.create_many")
	assert.True(t, ok)
}

func TestDenialsAreLogged(t *testing.T) {
	a := newAPI(t)
	alice := a.user("alice@example.com")
	bob := a.user("bob@example.com")
	homeID := a.home(alice)

	entries := captureLogs(t, func() {
		a.call("GET", fmt.Sprintf("/cart/%d", homeID), bob, nil)
	})
	e, ok := findAction(entries, "access.denied")
	if assert.True(t, ok) {
		assert.Equal(t, "warn", e.Level)
	}
}
