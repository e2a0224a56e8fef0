package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/chatrelay/internal/core"
	"github.com/dkeye/chatrelay/internal/domain"
	"github.com/dkeye/chatrelay/internal/metrics"
)

// Join adds the connection to the bound room. The entered notice reaches
// everyone in the room, the newcomer included, as part of the join itself.
func (o *Orchestrator) Join(sid core.SessionID, conn core.SignalConnection, b domain.Binding) (core.MemberSession, error) {
	if !b.Valid() {
		o.Registry.ReleaseRoom(sid)
		dropped(metrics.ReasonUnbound, sid, domain.ErrUnboundConnection)
		return nil, domain.ErrUnboundConnection
	}
	ms := core.NewMemberSession(sid, domain.NewMember(b.Name), conn)
	res, err := o.Rooms.JoinRoom(b.Room, ms, domain.Entered(b.Name))
	if err != nil {
		o.Registry.ReleaseRoom(sid)
		dropped(metrics.ReasonRoomNotFound, sid, err)
		return nil, err
	}
	o.Registry.BindRoom(sid, b)
	log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("room", string(b.Room)).Str("name", b.Name).Msg("joined room")
	o.applyPolicy(b.Room, res)
	return ms, nil
}

// Say appends body to the room history and fans it out.
func (o *Orchestrator) Say(sid core.SessionID, b domain.Binding, body string) error {
	msg := domain.Message{Sender: b.Name, Body: body}
	res, err := o.Rooms.AppendMessage(b.Room, msg)
	if err != nil {
		dropped(metrics.ReasonRoomNotFound, sid, err)
		return err
	}
	log.Debug().Str("module", "app.orch").Str("sid", string(sid)).Str("room", string(b.Room)).Msg("message relayed")
	o.applyPolicy(b.Room, res)
	return nil
}

// Leave removes the connection from the room it is bound to in the
// registry. When the room survives, the remaining members are told within the
// same room critical section; when it was the last member there is nobody to
// tell.
func (o *Orchestrator) Leave(sid core.SessionID) {
	b, ok := o.Registry.RoomOf(sid)
	o.Registry.ReleaseRoom(sid)
	if !ok {
		return
	}
	deleted, res := o.Rooms.LeaveRoom(b.Room, sid, domain.Left(b.Name))
	if deleted {
		log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("room", string(b.Room)).Msg("last member left")
		return
	}
	log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("room", string(b.Room)).Str("name", b.Name).Msg("left room")
	o.applyPolicy(b.Room, res)
}

// Close forgets the connection entirely.
func (o *Orchestrator) Close(sid core.SessionID) {
	o.Registry.Unbind(sid)
	metrics.Connections.Dec()
}
