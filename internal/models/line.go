package models

// LineStatus is a snapshot of the waiting line scalars.
type LineStatus struct {
	FirstInLine uint32 `json:"first_in_line"`
	LastInLine  uint32 `json:"last_in_line"`
	Length      uint32 `json:"length"`
	LastTurn    uint32 `json:"last_turn"`
	Capacity    uint32 `json:"capacity"`
}
