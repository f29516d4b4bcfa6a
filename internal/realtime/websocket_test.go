package realtime

import (
	"errors"
	"sync"
	"testing"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records frames and fails if two writes overlap.
type fakeConn struct {
	mu      sync.Mutex
	busy    bool
	overlap bool
	frames  [][]byte
	closes  int
	failOn  int
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	if f.busy {
		f.overlap = true
	}
	f.busy = true
	f.mu.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	if f.failOn > 0 && len(f.frames)+1 == f.failOn {
		return errors.New("broken pipe")
	}
	f.frames = append(f.frames, append([]byte(nil), data...))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func TestWebSocketConnSerialisesWrites(t *testing.T) {
	fc := &fakeConn{}
	w := &WebSocketConn{conn: fc}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, w.WriteMessage(websocket.TextMessage, []byte("x")))
		}()
	}
	wg.Wait()

	assert.Len(t, fc.frames, 50)
	assert.False(t, fc.overlap)
}

func TestWebSocketConnCloseOnce(t *testing.T) {
	fc := &fakeConn{}
	w := &WebSocketConn{conn: fc}

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Equal(t, 1, fc.closes)
	assert.ErrorIs(t, w.WriteMessage(websocket.TextMessage, []byte("late")), websocket.ErrCloseSent)
}

func TestWritePumpDrainsSend(t *testing.T) {
	fc := &fakeConn{}
	c := &Client{ID: "p", UserID: uuid.New(), Conn: &WebSocketConn{conn: fc}, Send: make(chan []byte, 3)}
	c.Send <- []byte("a")
	c.Send <- []byte("b")
	close(c.Send)

	require.NoError(t, c.WritePump())
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, fc.frames)
}

func TestWritePumpStopsOnWriteError(t *testing.T) {
	fc := &fakeConn{failOn: 2}
	c := &Client{ID: "p", UserID: uuid.New(), Conn: &WebSocketConn{conn: fc}, Send: make(chan []byte, 3)}
	c.Send <- []byte("a")
	c.Send <- []byte("b")
	c.Send <- []byte("c")

	assert.Error(t, c.WritePump())
	assert.Len(t, fc.frames, 1)
}
