package domain

import "strings"

const MaxDisplayNameLen = 36

// Member represents a connection's participation meta for a room.
// No transport or lifecycle logic here.
type Member struct {
	Name string
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(name string) *Member {
	return &Member{Name: name}
}

// Binding is the (room, display name) pair a connection carries for its
// whole lifetime. It is established before the connection is opened.
type Binding struct {
	Room RoomCode
	Name string
}

func (b Binding) Valid() bool {
	return b.Room != "" && b.Name != ""
}

// ValidateDisplayName trims and checks a user supplied name.
func ValidateDisplayName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || len(name) > MaxDisplayNameLen {
		return "", ErrDisplayNameInvalid
	}
	return name, nil
}
