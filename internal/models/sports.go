package models

import "time"

type Team struct {
	ID           int    `json:"id"`
	Abbreviation string `json:"abbreviation"`
	City         string `json:"city"`
	Name         string `json:"name"`
	FullName     string `json:"full_name"`
	Conference   string `json:"conference"`
}

// Game follows the upstream sports API shape.
type Game struct {
	ID               int       `json:"id"`
	Date             string    `json:"date"`
	Datetime         time.Time `json:"datetime"`
	Season           int       `json:"season"`
	Status           string    `json:"status"`
	Period           int       `json:"period"`
	Time             string    `json:"time"`
	Postseason       bool      `json:"postseason"`
	HomeTeamScore    int       `json:"home_team_score"`
	VisitorTeamScore int       `json:"visitor_team_score"`
	HomeTeam         Team      `json:"home_team"`
	VisitorTeam      Team      `json:"visitor_team"`
}

// IsFinal reports whether the upstream marks the game finished.
func (g Game) IsFinal() bool {
	return g.Status == "Final"
}

type PlayerRef struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
}

// StatLine is one player's box score line.
type StatLine struct {
	Player   PlayerRef `json:"player"`
	Team     Team      `json:"team"`
	Min      string    `json:"min"`
	Pts      int       `json:"pts"`
	Reb      int       `json:"reb"`
	Ast      int       `json:"ast"`
	Stl      int       `json:"stl"`
	Blk      int       `json:"blk"`
	Turnover int       `json:"turnover"`
	Fgm      int       `json:"fgm"`
	Fga      int       `json:"fga"`
	Fg3m     int       `json:"fg3m"`
	Fg3a     int       `json:"fg3a"`
	Ftm      int       `json:"ftm"`
	Fta      int       `json:"fta"`
}

type BoxScore struct {
	Game    Game       `json:"game"`
	Home    []StatLine `json:"home"`
	Visitor []StatLine `json:"visitor"`
}

// RosterPlayer is an entry of the static rosters file.
type RosterPlayer struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Position    string `json:"position"`
	Jersey      string `json:"jersey"`
	HeadshotURL string `json:"headshotUrl,omitempty"`
}
