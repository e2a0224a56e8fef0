package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/chatrelay/internal/domain"
	"github.com/dkeye/chatrelay/internal/metrics"
)

var _ RoomRegistry = (*RoomManager)(nil)

// RoomManager owns every live room. The map is guarded by mu; each room
// carries its own lock so traffic in one room never waits on another.
// Lock order is always mu before a room lock.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[domain.RoomCode]*roomImpl
	codes *CodeGenerator
	now   func() time.Time
}

func NewRoomManager(codes *CodeGenerator) *RoomManager {
	if codes == nil {
		codes = NewCodeGenerator(DefaultCodeLength, nil)
	}
	return &RoomManager{
		rooms: make(map[domain.RoomCode]*roomImpl),
		codes: codes,
		now:   time.Now,
	}
}

func (m *RoomManager) CreateRoom(creator string, public bool) domain.RoomCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	code := m.codes.Generate(func(c domain.RoomCode) bool {
		_, taken := m.rooms[c]
		return taken
	})
	m.rooms[code] = newRoom(code, creator, public, m.now())

	visibility := "private"
	if public {
		visibility = "public"
	}
	metrics.RoomsCreated.WithLabelValues(visibility).Inc()
	metrics.LiveRooms.Inc()
	log.Info().Str("module", "core.rooms").Str("room", string(code)).Str("creator", creator).Bool("public", public).Msg("room created")
	return code
}

func (m *RoomManager) get(code domain.RoomCode) (*roomImpl, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[code]
	return r, ok
}

func (m *RoomManager) RoomExists(code domain.RoomCode) bool {
	r, ok := m.get(code)
	return ok && !r.isClosed()
}

func (m *RoomManager) JoinRoom(code domain.RoomCode, ms MemberSession, notice domain.Message) (PublishResult, error) {
	r, ok := m.get(code)
	if !ok {
		return PublishResult{}, fmt.Errorf("join %s: %w", code, domain.ErrRoomNotFound)
	}
	res, err := r.addMember(ms, notice)
	if err != nil {
		return res, fmt.Errorf("join %s: %w", code, err)
	}
	return res, nil
}

// LeaveRoom is idempotent. It reports whether the room was deleted because
// sid was its last member; when it survives, notice has already reached the
// remaining members of this very room.
func (m *RoomManager) LeaveRoom(code domain.RoomCode, sid SessionID, notice domain.Message) (bool, PublishResult) {
	r, ok := m.get(code)
	if !ok {
		return false, PublishResult{}
	}
	deleted, res := r.removeMember(sid, notice)
	if deleted {
		m.forget(code, r, "empty")
	}
	return deleted, res
}

func (m *RoomManager) forget(code domain.RoomCode, r *roomImpl, cause string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rooms[code] != r {
		return
	}
	delete(m.rooms, code)
	metrics.LiveRooms.Dec()
	metrics.RoomsDeleted.WithLabelValues(cause).Inc()
	log.Info().Str("module", "core.rooms").Str("room", string(code)).Str("cause", cause).Msg("room deleted")
}

func (m *RoomManager) AppendMessage(code domain.RoomCode, msg domain.Message) (PublishResult, error) {
	r, ok := m.get(code)
	if !ok {
		return PublishResult{}, fmt.Errorf("append %s: %w", code, domain.ErrRoomNotFound)
	}
	res, err := r.appendMessage(msg)
	if err != nil {
		return res, fmt.Errorf("append %s: %w", code, err)
	}
	metrics.MessagesRelayed.Inc()
	return res, nil
}

func (m *RoomManager) ListPublicRooms() []domain.RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.RoomInfo, 0, len(m.rooms))
	for code, r := range m.rooms {
		if !r.public || r.isClosed() {
			continue
		}
		out = append(out, domain.RoomInfo{Code: code, Creator: r.creator})
	}
	return out
}

func (m *RoomManager) Snapshot(code domain.RoomCode) (domain.RoomSnapshot, error) {
	r, ok := m.get(code)
	if !ok {
		return domain.RoomSnapshot{}, fmt.Errorf("snapshot %s: %w", code, domain.ErrRoomNotFound)
	}
	snap, err := r.snapshot()
	if err != nil {
		return snap, fmt.Errorf("snapshot %s: %w", code, err)
	}
	return snap, nil
}

// ReapUnclaimed removes rooms that were created but never joined within ttl.
func (m *RoomManager) ReapUnclaimed(ttl time.Duration) int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for code, r := range m.rooms {
		if !r.reapIfUnclaimed(now, ttl) {
			continue
		}
		delete(m.rooms, code)
		metrics.LiveRooms.Dec()
		metrics.RoomsDeleted.WithLabelValues("unclaimed").Inc()
		log.Info().Str("module", "core.rooms").Str("room", string(code)).Msg("unclaimed room reaped")
		n++
	}
	return n
}

// Len is the number of rooms currently held.
func (m *RoomManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
