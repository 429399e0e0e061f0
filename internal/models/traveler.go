package models

// TravelerGroup is trip-scoped, not destination-scoped. It is consumed
// by derived room/rate suggestions and mutated independently of any
// destination record.
type TravelerGroup struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

func (g TravelerGroup) Total() int {
	return g.Adults + g.Children + g.Infants
}

// SuggestRooms derives a room count: up to two adults per room, each
// room absorbs one child, leftover children pair up in extra rooms.
// Infants share with adults and never add rooms.
func SuggestRooms(g TravelerGroup) int {
	if g.Total() <= 0 {
		return 0
	}
	rooms := (g.Adults + 1) / 2
	if rooms == 0 {
		rooms = 1
	}
	remaining := g.Children - rooms
	if remaining > 0 {
		rooms += (remaining + 1) / 2
	}
	return rooms
}
