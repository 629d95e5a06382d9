package model

import "time"

// GameID uniquely identifies a catalog game. It is chosen by the
// uploading developer and reused across version updates.
type GameID string

// Review is one player rating of a game
type Review struct {
	User    string `json:"user"`
	Rating  int    `json:"rating"` // 1..5
	Comment string `json:"comment"`
}

// Game is a catalog entry for an installed game
type Game struct {
	ID          GameID   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Version     string   `json:"version"` // three-part, dot-separated
	MinPlayers  int      `json:"min_players"`
	MaxPlayers  int      `json:"max_players"`
	Author      string   `json:"author"` // developer username
	Reviews     []Review `json:"reviews"`
	AvgRating   *float64 `json:"avg_rating"` // nil until first review

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy. Storage hands out clones so callers can
// mutate records without racing other readers.
func (g *Game) Clone() *Game {
	c := *g
	c.Reviews = append([]Review(nil), g.Reviews...)
	if g.AvgRating != nil {
		avg := *g.AvgRating
		c.AvgRating = &avg
	}
	return &c
}

// RecomputeRating recalculates AvgRating as the mean of all reviews
func (g *Game) RecomputeRating() {
	if len(g.Reviews) == 0 {
		g.AvgRating = nil
		return
	}
	sum := 0
	for _, r := range g.Reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(g.Reviews))
	g.AvgRating = &avg
}
