package domain

import (
	"errors"
	"strings"
)

type RoomCode string

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrUnboundConnection  = errors.New("connection is not bound to a room")
	ErrSessionDetached    = errors.New("session detached")
	ErrRoomCodeEmpty      = errors.New("room code empty")
	ErrRoomCodeMalformed  = errors.New("room code malformed")
	ErrDisplayNameInvalid = errors.New("display name invalid")
)

// ParseRoomCode normalises user input ("abcd ", "ABCD") into a RoomCode.
func ParseRoomCode(raw string) (RoomCode, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", ErrRoomCodeEmpty
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return "", ErrRoomCodeMalformed
		}
	}
	return RoomCode(s), nil
}

// RoomInfo is the public listing entry.
type RoomInfo struct {
	Code    RoomCode `json:"code"`
	Creator string   `json:"creator"`
}

// RoomSnapshot is a read-only copy of a room for initial page render.
type RoomSnapshot struct {
	Code     RoomCode  `json:"code"`
	Creator  string    `json:"creator"`
	Public   bool      `json:"public"`
	Members  []string  `json:"members"`
	Messages []Message `json:"messages"`
}
