package core

import "github.com/dkeye/chatrelay/internal/domain"

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
}

// RoomRegistry is the core-facing API of the room store.
// It owns every room record but never touches transport resources
// beyond the non-blocking TrySend of its members.
type RoomRegistry interface {
	CreateRoom(creator string, public bool) domain.RoomCode
	RoomExists(code domain.RoomCode) bool
	// JoinRoom and LeaveRoom deliver notice to the members present right
	// after the change, inside the same room critical section. A zero notice
	// is not sent; a leave that deletes the room sends nothing.
	JoinRoom(code domain.RoomCode, ms MemberSession, notice domain.Message) (PublishResult, error)
	LeaveRoom(code domain.RoomCode, sid SessionID, notice domain.Message) (deleted bool, res PublishResult)
	AppendMessage(code domain.RoomCode, msg domain.Message) (PublishResult, error)
	ListPublicRooms() []domain.RoomInfo
	Snapshot(code domain.RoomCode) (domain.RoomSnapshot, error)
}
