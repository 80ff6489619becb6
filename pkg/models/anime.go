package models

// UnrankedTierID is the sentinel tier meaning "no tier assigned".
// It never appears in the tiers table.
const UnrankedTierID = "unranked"

// Anime is the canonical board entry. ID is our primary key; MALID is the
// MyAnimeList identity when the entry was imported from the catalog
// (0 = unknown). Status and Type come from the catalog and are carried in
// event payloads but are not persisted columns.
type Anime struct {
	ID            string  `json:"id"`
	MALID         int64   `json:"mal_id,omitempty"`
	Title         string  `json:"title"`
	TitleEnglish  string  `json:"title_english,omitempty"`
	TitleOriginal string  `json:"title_original,omitempty"`
	Image         string  `json:"image,omitempty"`
	Score         float64 `json:"score,omitempty"`
	Year          int     `json:"year,omitempty"`
	Status        string  `json:"status,omitempty"`
	Type          string  `json:"type,omitempty"`
}

// SameEntity reports whether two records describe the same anime:
// equal IDs, or equal non-zero MAL ids.
func (a Anime) SameEntity(b Anime) bool {
	if a.ID != "" && b.ID != "" && a.ID == b.ID {
		return true
	}
	if a.MALID != 0 && b.MALID != 0 && a.MALID == b.MALID {
		return true
	}
	return false
}

// MergeFrom shallow-merges non-zero fields of src into a. Used for
// late-arriving enrichment (images, scores) on anime-update.
func (a *Anime) MergeFrom(src Anime) {
	if src.MALID != 0 {
		a.MALID = src.MALID
	}
	if src.Title != "" {
		a.Title = src.Title
	}
	if src.TitleEnglish != "" {
		a.TitleEnglish = src.TitleEnglish
	}
	if src.TitleOriginal != "" {
		a.TitleOriginal = src.TitleOriginal
	}
	if src.Image != "" {
		a.Image = src.Image
	}
	if src.Score != 0 {
		a.Score = src.Score
	}
	if src.Year != 0 {
		a.Year = src.Year
	}
	if src.Status != "" {
		a.Status = src.Status
	}
	if src.Type != "" {
		a.Type = src.Type
	}
}
