package model

import (
	"time"

	"github.com/google/uuid"
)

func NewStat(userID int64) Stat {
	return Stat{ID: uuid.New(), UserID: userID, CreatedAt: time.Now()}
}

// Stat is one user's outcome of one finished game.
type Stat struct {
	ID     uuid.UUID `json:"id"`
	UserID int64     `json:"userID"`

	Score      int  `json:"score"`
	Won        bool `json:"won"`
	RoundsNum  int  `json:"roundsNum"`
	BestRound  int  `json:"bestRound"`
	Flip7s     int  `json:"flip7s"`
	Busts      int  `json:"busts"`
	PlayersNum int  `json:"playersNum"`

	CreatedAt time.Time `json:"createdAt"`
}

// AggregationStat summarizes a user's whole history.
type AggregationStat struct {
	Count     int
	Wins      int
	BestScore int
	BestRound int
	Flip7s    int
	Busts     int
	AvgScore  int
}
