package core_test

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/dkeye/chatrelay/internal/core"
	"github.com/dkeye/chatrelay/internal/domain"
)

// recConn records every frame it is handed.
type recConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func (c *recConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
	return nil
}

func (c *recConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *recConn) messages(t *testing.T) []domain.Message {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Message, 0, len(c.frames))
	for _, f := range c.frames {
		var m domain.Message
		if err := json.Unmarshal(f, &m); err != nil {
			t.Fatalf("bad frame %q: %v", f, err)
		}
		out = append(out, m)
	}
	return out
}

func member(sid, name string) (core.MemberSession, *recConn) {
	conn := &recConn{}
	return core.NewMemberSession(core.SessionID(sid), domain.NewMember(name), conn), conn
}

// join and leave exercise membership without system notices.
func join(rm *core.RoomManager, code domain.RoomCode, ms core.MemberSession) error {
	_, err := rm.JoinRoom(code, ms, domain.Message{})
	return err
}

func leave(rm *core.RoomManager, code domain.RoomCode, sid core.SessionID) bool {
	deleted, _ := rm.LeaveRoom(code, sid, domain.Message{})
	return deleted
}

func assertFrames(t *testing.T, who string, got []domain.Message, want ...domain.Message) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s received %+v, want %+v", who, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%s frame %d = %+v, want %+v", who, i, got[i], want[i])
		}
	}
}

// seqSource replays fixed codes in order.
type seqSource struct {
	codes []string
	calls int
}

func (s *seqSource) GenerateString(n int, _ string) string {
	c := s.codes[s.calls%len(s.codes)]
	s.calls++
	return c[:n]
}
