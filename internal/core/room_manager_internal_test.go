package core

import (
	"testing"
	"time"

	"github.com/dkeye/chatrelay/internal/domain"
)

type nopConn struct{}

func (nopConn) TrySend(Frame) error { return nil }
func (nopConn) Close()              {}

func TestReapUnclaimed(t *testing.T) {
	rm := NewRoomManager(nil)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rm.now = func() time.Time { return now }

	orphan := rm.CreateRoom("Alice", true)
	claimed := rm.CreateRoom("Bob", true)
	if _, err := rm.JoinRoom(claimed, NewMemberSession("s1", domain.NewMember("Bob"), nopConn{}), domain.Entered("Bob")); err != nil {
		t.Fatalf("join: %v", err)
	}

	if n := rm.ReapUnclaimed(time.Minute); n != 0 {
		t.Fatalf("nothing is old enough yet, reaped %d", n)
	}

	now = now.Add(2 * time.Minute)
	if n := rm.ReapUnclaimed(time.Minute); n != 1 {
		t.Fatalf("expected one reaped room, got %d", n)
	}
	if rm.RoomExists(orphan) {
		t.Error("orphan room survived the reaper")
	}
	if !rm.RoomExists(claimed) {
		t.Error("occupied room must never be reaped")
	}
}

func TestReapedRoomRejectsLateJoin(t *testing.T) {
	rm := NewRoomManager(nil)
	now := time.Now()
	rm.now = func() time.Time { return now }
	code := rm.CreateRoom("Alice", false)
	r, _ := rm.get(code)

	now = now.Add(time.Hour)
	rm.ReapUnclaimed(time.Minute)

	if _, err := r.addMember(NewMemberSession("s1", domain.NewMember("Alice"), nopConn{}), domain.Message{}); err == nil {
		t.Fatal("a reaped room must refuse members held through a stale pointer")
	}
}
