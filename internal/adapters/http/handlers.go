package http

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/chatrelay/internal/app/orch"
	"github.com/dkeye/chatrelay/internal/domain"
)

const (
	keyRoom = "room"
	keyName = "name"
)

type handlers struct {
	orch *orch.Orchestrator
}

type createRequest struct {
	Name   string `json:"name"`
	Public bool   `json:"public"`
}

type joinRequest struct {
	Name string `json:"name"`
}

func bindingOf(s sessions.Session) domain.Binding {
	room, _ := s.Get(keyRoom).(string)
	name, _ := s.Get(keyName).(string)
	return domain.Binding{Room: domain.RoomCode(room), Name: name}
}

func bind(c *gin.Context, b domain.Binding) error {
	s := sessions.Default(c)
	s.Set(keyRoom, string(b.Room))
	s.Set(keyName, b.Name)
	return s.Save()
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"connections": h.orch.Registry.Count(),
	})
}

// GET /api/rooms: public rooms only, unordered
func (h *handlers) listRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.orch.Rooms.ListPublicRooms()})
}

// POST /api/rooms: create a room and bind the caller to it
func (h *handlers) createRoom(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	name, err := domain.ValidateDisplayName(req.Name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a name."})
		return
	}

	code := h.orch.Rooms.CreateRoom(name, req.Public)
	if err := bind(c, domain.Binding{Room: code, Name: name}); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"code": code, "name": name})
}

// POST /api/rooms/:code/join: bind the caller to an existing room
func (h *handlers) joinRoom(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	name, err := domain.ValidateDisplayName(req.Name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a name."})
		return
	}
	code, err := domain.ParseRoomCode(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a room code."})
		return
	}
	if !h.orch.Rooms.RoomExists(code) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room does not exist."})
		return
	}
	if err := bind(c, domain.Binding{Room: code, Name: name}); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code, "name": name})
}

// GET /api/room: history and the other members of the caller's room
func (h *handlers) roomSnapshot(c *gin.Context) {
	b := bindingOf(sessions.Default(c))
	if !b.Valid() {
		c.JSON(http.StatusNotFound, gin.H{"error": "not in a room"})
		return
	}
	snap, err := h.orch.Rooms.Snapshot(b.Room)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room does not exist."})
		return
	}
	others := make([]string, 0, len(snap.Members))
	for _, m := range snap.Members {
		if m != b.Name {
			others = append(others, m)
		}
	}
	snap.Members = others
	c.JSON(http.StatusOK, gin.H{"name": b.Name, "room": snap})
}

// DELETE /api/session: forget the room binding
func (h *handlers) clearSession(c *gin.Context) {
	s := sessions.Default(c)
	s.Clear()
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
	}
	c.Status(http.StatusNoContent)
}
