package service

import (
	"github.com/tristanl-slalom/conflicto-sub001/internal/memstore"
)

// stack — сервисы поверх memstore; часы сервисов привязаны к часам стора,
// чтобы тесты управляли временем в одном месте.
type stack struct {
	store        *memstore.Store
	sessions     *memstore.SessionRepo
	activities   *memstore.ActivityRepo
	participants *memstore.ParticipantRepo
	responses    *memstore.ResponseRepo

	registry  *Registry
	presence  *Presence
	snapshots *Snapshot
	syncer    *Syncer
	poller    *Poller
}

func newStack() *stack {
	m := memstore.New()
	sessions := memstore.NewSessionRepo(m)
	activities := memstore.NewActivityRepo(m)
	participants := memstore.NewParticipantRepo(m)
	responses := memstore.NewResponseRepo(m)

	registry := NewRegistry(participants)
	presence := NewPresence(participants)
	presence.now = m.Now
	snapshots := NewSnapshot(sessions, activities, presence)
	syncer := NewSyncer(sessions, participants, registry, presence, snapshots)
	poller := NewPoller(sessions, activities, responses, participants, presence, nil)
	poller.now = m.Now

	return &stack{
		store:        m,
		sessions:     sessions,
		activities:   activities,
		participants: participants,
		responses:    responses,
		registry:     registry,
		presence:     presence,
		snapshots:    snapshots,
		syncer:       syncer,
		poller:       poller,
	}
}
