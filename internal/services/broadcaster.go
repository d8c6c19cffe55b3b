package services

import "mysteries-backend/internal/models"

// Broadcaster receives the events of committed transitions.
type Broadcaster interface {
	Broadcast(event models.Event)
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(models.Event) {}
