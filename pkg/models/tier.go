package models

// Tier is an ordered ranking category. Position is the display index.
type Tier struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Position int    `json:"position"`
}

// DefaultTiers is the seed set inserted when the tiers table is empty.
func DefaultTiers() []Tier {
	return []Tier{
		{ID: "S", Name: "S - Légendaire", Color: "#ff6b6b", Position: 0},
		{ID: "A", Name: "A - Excellent", Color: "#4ecdc4", Position: 1},
		{ID: "B", Name: "B - Très bon", Color: "#45b7d1", Position: 2},
		{ID: "C", Name: "C - Bon", Color: "#96ceb4", Position: 3},
		{ID: "D", Name: "D - Moyen", Color: "#feca57", Position: 4},
	}
}
