package core

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/chatrelay/internal/domain"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	code    domain.RoomCode
	creator string
	public  bool
	created time.Time

	mu       sync.Mutex
	bySID    map[SessionID]MemberSession
	messages []domain.Message
	// claimed flips once the first member joins; closed is terminal and is
	// set under mu before the registry forgets the room.
	claimed bool
	closed  bool
}

func newRoom(code domain.RoomCode, creator string, public bool, now time.Time) *roomImpl {
	return &roomImpl{
		code:    code,
		creator: creator,
		public:  public,
		created: now,
		bySID:   make(map[SessionID]MemberSession),
	}
}

func (r *roomImpl) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// addMember announces notice to everyone now inside, the newcomer included,
// before any later message can reach it.
func (r *roomImpl) addMember(ms MemberSession, notice domain.Message) (PublishResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return PublishResult{}, domain.ErrRoomNotFound
	}
	r.bySID[ms.ID()] = ms
	r.claimed = true
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Str("sid", string(ms.ID())).Int("members", len(r.bySID)).Msg("member added")
	if notice.IsZero() {
		return PublishResult{}, nil
	}
	return r.broadcastLocked(notice), nil
}

// removeMember reports whether this call emptied the room and closed it.
// Otherwise notice goes to the members that remain.
func (r *roomImpl) removeMember(sid SessionID, notice domain.Message) (bool, PublishResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false, PublishResult{}
	}
	if _, ok := r.bySID[sid]; !ok {
		return false, PublishResult{}
	}
	delete(r.bySID, sid)
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Str("sid", string(sid)).Int("members", len(r.bySID)).Msg("member removed")
	if len(r.bySID) == 0 {
		r.closed = true
		return true, PublishResult{}
	}
	if notice.IsZero() {
		return false, PublishResult{}
	}
	return false, r.broadcastLocked(notice)
}

func (r *roomImpl) appendMessage(msg domain.Message) (PublishResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return PublishResult{}, domain.ErrRoomNotFound
	}
	r.messages = append(r.messages, msg)
	return r.broadcastLocked(msg), nil
}

// broadcastLocked fans msg out to every member, sender included. Holding mu
// keeps per-room delivery order identical to history order.
func (r *roomImpl) broadcastLocked(msg domain.Message) PublishResult {
	res := PublishResult{}
	frame, err := EncodeMessage(msg)
	if err != nil {
		log.Error().Err(err).Str("module", "core.room").Str("room", string(r.code)).Msg("encode message")
		return res
	}
	for _, m := range r.bySID {
		if err := m.Signal().TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.code)).Str("from", msg.Sender).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) snapshot() (domain.RoomSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return domain.RoomSnapshot{}, domain.ErrRoomNotFound
	}
	members := make([]string, 0, len(r.bySID))
	for _, ms := range r.bySID {
		members = append(members, ms.Meta().Name)
	}
	slices.Sort(members)
	return domain.RoomSnapshot{
		Code:     r.code,
		Creator:  r.creator,
		Public:   r.public,
		Members:  members,
		Messages: slices.Clone(r.messages),
	}, nil
}

// reapIfUnclaimed closes a room nobody ever joined once it is older than ttl.
func (r *roomImpl) reapIfUnclaimed(now time.Time, ttl time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.claimed || now.Sub(r.created) < ttl {
		return false
	}
	r.closed = true
	return true
}

// EncodeMessage renders the wire frame for msg.
func EncodeMessage(msg domain.Message) (Frame, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	return b, nil
}
