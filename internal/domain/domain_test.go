package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestParseRoomCode(t *testing.T) {
	tests := []struct {
		in   string
		want RoomCode
		err  error
	}{
		{"ABCD", "ABCD", nil},
		{" abcd ", "ABCD", nil},
		{"", "", ErrRoomCodeEmpty},
		{"   ", "", ErrRoomCodeEmpty},
		{"AB1D", "", ErrRoomCodeMalformed},
		{"ÄBCD", "", ErrRoomCodeMalformed},
	}
	for _, tt := range tests {
		got, err := ParseRoomCode(tt.in)
		if !errors.Is(err, tt.err) {
			t.Errorf("ParseRoomCode(%q) err = %v, want %v", tt.in, err, tt.err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRoomCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateDisplayName(t *testing.T) {
	if name, err := ValidateDisplayName("  Alice "); err != nil || name != "Alice" {
		t.Errorf("got %q, %v", name, err)
	}
	if _, err := ValidateDisplayName(" "); !errors.Is(err, ErrDisplayNameInvalid) {
		t.Errorf("blank name accepted: %v", err)
	}
	if _, err := ValidateDisplayName(strings.Repeat("x", MaxDisplayNameLen+1)); !errors.Is(err, ErrDisplayNameInvalid) {
		t.Errorf("long name accepted: %v", err)
	}
}

func TestBindingValid(t *testing.T) {
	if (Binding{Room: "ABCD"}).Valid() {
		t.Error("binding without name must be invalid")
	}
	if (Binding{Name: "Alice"}).Valid() {
		t.Error("binding without room must be invalid")
	}
	if !(Binding{Room: "ABCD", Name: "Alice"}).Valid() {
		t.Error("complete binding rejected")
	}
}
