package collab

import (
	"strconv"
	"time"

	"github.com/Sydnec/MyAnimeTierList/pkg/models"
)

// FindAnime resolves a candidate against the board: two records are the
// same entity when their ids match, or their mal_ids match and both are
// set. Returns the index of the match and whether one was found.
func FindAnime(animes []models.Anime, candidate models.Anime) (int, bool) {
	for i := range animes {
		if animes[i].SameEntity(candidate) {
			return i, true
		}
	}
	return -1, false
}

// FallbackID generates a local identity for entries without a mal_id.
// The offset keeps ids distinct within one bulk import.
func FallbackID(offset int) string {
	return strconv.FormatInt(time.Now().UnixMilli()+int64(offset), 10)
}

// ApplyMove is the one order-list-maintenance algorithm, shared by the
// server and the client mirror so both roles land on identical state:
//
//   - the assignment is rewritten (or cleared for "unranked"),
//   - the anime is removed from every other tier's order list,
//   - any prior occurrence in the target list is removed before inserting
//     at min(position, length).
//
// Idempotent: replaying the same move yields the same state.
func ApplyMove(assignments map[string]string, orders map[string][]string, mv models.Move) {
	if mv.TierID == models.UnrankedTierID {
		delete(assignments, mv.AnimeID)
	} else {
		assignments[mv.AnimeID] = mv.TierID
	}

	for tier, list := range orders {
		if tier == mv.TierID {
			continue
		}
		orders[tier] = removeID(list, mv.AnimeID)
	}

	if mv.TierID == models.UnrankedTierID {
		return
	}

	list := removeID(orders[mv.TierID], mv.AnimeID)
	pos := mv.Position
	if pos < 0 {
		pos = 0
	}
	if pos > len(list) {
		pos = len(list)
	}
	list = append(list, "")
	copy(list[pos+1:], list[pos:])
	list[pos] = mv.AnimeID
	orders[mv.TierID] = list
}

// RemoveAnime drops id from the anime list, the assignment map and every
// tier's order list. Returns the filtered anime slice.
func RemoveAnime(animes []models.Anime, assignments map[string]string, orders map[string][]string, id string) []models.Anime {
	out := animes[:0:0]
	for _, a := range animes {
		if a.ID != id {
			out = append(out, a)
		}
	}
	delete(assignments, id)
	for tier, list := range orders {
		orders[tier] = removeID(list, id)
	}
	return out
}

func removeID(list []string, id string) []string {
	for i, v := range list {
		if v == id {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}
