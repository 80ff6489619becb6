package jikan

import (
	"time"

	"github.com/Sydnec/MyAnimeTierList/pkg/models"
)

type searchResponse struct {
	Data []animeRecord `json:"data"`
}

type detailResponse struct {
	Data *animeRecord `json:"data"`
}

type animeRecord struct {
	MALID         int64   `json:"mal_id"`
	Title         string  `json:"title"`
	TitleEnglish  string  `json:"title_english"`
	TitleJapanese string  `json:"title_japanese"`
	Score         float64 `json:"score"`
	Year          int     `json:"year"`
	Status        string  `json:"status"`
	Type          string  `json:"type"`
	Images        struct {
		JPG struct {
			ImageURL      string `json:"image_url"`
			SmallImageURL string `json:"small_image_url"`
			LargeImageURL string `json:"large_image_url"`
		} `json:"jpg"`
	} `json:"images"`
	Aired struct {
		From string `json:"from"`
	} `json:"aired"`
}

// toModel maps a catalog record into our canonical form, preferring the
// English title and falling back to the aired date for the year.
func (r animeRecord) toModel() models.Anime {
	title := r.Title
	if r.TitleEnglish != "" {
		title = r.TitleEnglish
	}

	image := r.Images.JPG.ImageURL
	if image == "" {
		image = r.Images.JPG.SmallImageURL
	}
	if image == "" {
		image = r.Images.JPG.LargeImageURL
	}

	year := r.Year
	if year == 0 && r.Aired.From != "" {
		if t, err := time.Parse(time.RFC3339, r.Aired.From); err == nil {
			year = t.Year()
		}
	}

	return models.Anime{
		MALID:         r.MALID,
		Title:         title,
		TitleEnglish:  r.TitleEnglish,
		TitleOriginal: r.TitleJapanese,
		Image:         image,
		Score:         r.Score,
		Year:          year,
		Status:        r.Status,
		Type:          r.Type,
	}
}
