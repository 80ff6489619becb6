package models

// CollaborativeState is the aggregate broadcast to clients.
//
// TierAssignments is authoritative for tier membership; TierOrders is
// best-effort display ordering (unknown ids are healed at render time).
// LastModified is Unix milliseconds.
type CollaborativeState struct {
	Animes          []Anime             `json:"animes"`
	TierAssignments map[string]string   `json:"tierAssignments"`
	Tiers           []Tier              `json:"tiers"`
	TierOrders      map[string][]string `json:"tierOrders"`
	ConnectedUsers  int                 `json:"connectedUsers"`
	LastModified    int64               `json:"lastModified"`
}

// NewCollaborativeState returns an empty state with allocated maps.
func NewCollaborativeState() *CollaborativeState {
	return &CollaborativeState{
		Animes:          []Anime{},
		TierAssignments: make(map[string]string),
		Tiers:           []Tier{},
		TierOrders:      make(map[string][]string),
	}
}

// Move is the payload of anime-move events.
type Move struct {
	AnimeID  string `json:"animeId"`
	TierID   string `json:"tierId"`
	Position int    `json:"position"`
}
