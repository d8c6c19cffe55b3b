package services

import "mysteries-backend/internal/models"

// EventRecorder keeps every broadcast event in memory.
type EventRecorder struct {
	Events []models.Event
}

func (r *EventRecorder) Broadcast(event models.Event) {
	r.Events = append(r.Events, event)
}

func (r *EventRecorder) OfType(t models.EventType) []models.Event {
	var out []models.Event
	for _, e := range r.Events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
