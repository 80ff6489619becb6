// Package collection collapses multiple catalog entries (seasons, parts,
// cours of one series) into single display entities. Presentation-side
// convenience only: the authoritative server state never consults it.
package collection

import (
	"regexp"
	"strings"

	"github.com/Sydnec/MyAnimeTierList/pkg/models"
)

// PlaceholderImage marks entries with no real cover art.
const PlaceholderImage = "/placeholder-anime.svg"

// Season/part suffixes stripped when computing the base title. The
// colon-prefixed forms come first so "X: Season 2" never leaves a
// dangling colon behind.
var seasonPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i): Season \d+$`),
	regexp.MustCompile(`(?i): Part \d+$`),
	regexp.MustCompile(`(?i) Season \d+$`),
	regexp.MustCompile(`(?i) S\d+$`),
	regexp.MustCompile(`(?i) \d+(nd|rd|th) Season$`),
	regexp.MustCompile(`(?i) Part \d+$`),
	regexp.MustCompile(`(?i) Cour \d+$`),
	regexp.MustCompile(`(?i) \((Season |Part )?\d+\)$`),
	regexp.MustCompile(` \d+$`),
}

// BaseTitle strips season/part suffixes from a title. Returns the input
// unchanged when stripping would leave nothing.
func BaseTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}

	base := title
	for _, p := range seasonPatterns {
		base = strings.TrimSpace(p.ReplaceAllString(base, ""))
	}
	if base == "" {
		return title
	}
	return base
}

// displayTitle picks the title used for grouping: English first, then the
// main title, then the original.
func displayTitle(a models.Anime) string {
	if a.TitleEnglish != "" {
		return a.TitleEnglish
	}
	if a.Title != "" {
		return a.Title
	}
	return a.TitleOriginal
}

// Merge folds two seasons of one series into a single entity. The record
// with the earlier release year stays primary; it borrows a missing
// English title and a missing or placeholder image from the other.
func Merge(a, b models.Anime) models.Anime {
	main, other := a, b
	if b.Year != 0 && (a.Year == 0 || b.Year < a.Year) {
		main, other = b, a
	}

	if main.TitleEnglish == "" && other.TitleEnglish != "" {
		main.TitleEnglish = other.TitleEnglish
	}

	if main.Image == "" || main.Image == PlaceholderImage {
		if other.Image != "" && other.Image != PlaceholderImage {
			main.Image = other.Image
		}
	}

	return main
}

// Collection groups animes by lowercased base title, merging collisions.
type Collection struct {
	byBase map[string]models.Anime
	order  []string
}

func New() *Collection {
	return &Collection{byBase: make(map[string]models.Anime)}
}

// Add inserts an anime, merging it into an existing entry when another
// season of the same series is already present. Returns the stored record.
func (c *Collection) Add(anime models.Anime) models.Anime {
	key := strings.ToLower(BaseTitle(displayTitle(anime)))

	if existing, ok := c.byBase[key]; ok {
		c.byBase[key] = Merge(existing, anime)
	} else {
		c.byBase[key] = anime
		c.order = append(c.order, key)
	}
	return c.byBase[key]
}

// All returns the unique entities in first-seen order.
func (c *Collection) All() []models.Anime {
	out := make([]models.Anime, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.byBase[key])
	}
	return out
}

// Find looks up an entity by any of its season titles.
func (c *Collection) Find(title string) (models.Anime, bool) {
	a, ok := c.byBase[strings.ToLower(BaseTitle(title))]
	return a, ok
}
