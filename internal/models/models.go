package models

import (
	geom2 "github.com/peterstace/simplefeatures/geom"
	"github.com/twpayne/go-geom"
)

// ResultRecord is one cleaned row of the results dataset: the winner of one
// constituency in one general election
type ResultRecord struct {
	State         string   `json:"state"`
	Year          *int     `json:"year,omitempty"`
	PcName        string   `json:"pc_name"`
	JoinKey       string   `json:"-"`
	CandidateName string   `json:"candidate_name"`
	Party         string   `json:"party"`
	Votes         float64  `json:"votes"`
	Electors      float64  `json:"electors"`
	Turnout       float64  `json:"turnout"`
	MarginPct     *float64 `json:"margin_pct,omitempty"`
	MarginBucket  string   `json:"margin_bucket"`
}

// LoadStats summarises what the cleaning pass did to the results file
type LoadStats struct {
	RowsRead        int `json:"rows_read"`
	RowsDropped     int `json:"rows_dropped"`
	RowsKept        int `json:"rows_kept"`
	RowsWithoutYear int `json:"rows_without_year"`
}

// Constituency is one boundary feature of the GeoJSON file
type Constituency struct {
	FID      int          `json:"fid"`
	Name     string       `json:"pc_name"`
	State    string       `json:"state,omitempty"`
	JoinKey  string       `json:"-"`
	StateKey string       `json:"-"`
	Geometry geom.T       `json:"-"`
	Bounds   *geom.Bounds `json:"-"`
	// Shape is nil when the geometry could not be parsed for point lookups
	Shape *geom2.Geometry `json:"-"`
}

// BoundaryStats summarises the boundary file
type BoundaryStats struct {
	Features     int     `json:"features"`
	Locatable    int     `json:"locatable"`
	PointsBefore int     `json:"points_before"`
	PointsAfter  int     `json:"points_after"`
	MinLng       float64 `json:"min_lng"`
	MinLat       float64 `json:"min_lat"`
	MaxLng       float64 `json:"max_lng"`
	MaxLat       float64 `json:"max_lat"`
}

// MapEntry is the result of joining one boundary feature with the winner of a year
type MapEntry struct {
	FID           int      `json:"fid"`
	PcName        string   `json:"pc_name"`
	Party         string   `json:"party"`
	CandidateName string   `json:"candidate_name"`
	MarginPct     *float64 `json:"margin_pct,omitempty"`
	MarginBucket  string   `json:"margin_bucket"`
	Matched       bool     `json:"matched"`
}

// DominanceRow counts how many election years a party held the most seats in a state
type DominanceRow struct {
	State          string `json:"state"`
	Party          string `json:"party"`
	TimesDominated int    `json:"times_dominated"`
}

// CandidateWins counts the wins of a candidate under one party label
type CandidateWins struct {
	CandidateName string `json:"candidate_name"`
	Party         string `json:"party"`
	Wins          int    `json:"wins"`
}

// PartyYear is the per-year performance of one major party
type PartyYear struct {
	Year       int     `json:"year"`
	Party      string  `json:"party"`
	Seats      int     `json:"seats"`
	TotalVotes float64 `json:"total_votes"`
	AvgTurnout float64 `json:"avg_turnout"`
}

// YearTotals is the per-year roll-up of PartyYear rows
type YearTotals struct {
	Year       int     `json:"year"`
	TotalVotes float64 `json:"total_votes"`
	AvgTurnout float64 `json:"avg_turnout"`
}

// TurnoutMatrix is the constituency × year turnout grid of one state
type TurnoutMatrix struct {
	State          string      `json:"state"`
	Years          []int       `json:"years"`
	Constituencies []string    `json:"constituencies"`
	Values         [][]float64 `json:"values"`
}

// Empty reports whether the matrix has no rows
func (m TurnoutMatrix) Empty() bool {
	return len(m.Constituencies) == 0
}

// Options lists the values offered by the dashboard dropdowns
type Options struct {
	Years        []int    `json:"years"`
	DefaultYear  int      `json:"default_year"`
	States       []string `json:"states"`
	DefaultState string   `json:"default_state"`
}

// LocateResponse answers which constituency contains a point
type LocateResponse struct {
	Lat          float64   `json:"lat"`
	Lng          float64   `json:"lng"`
	Constituency string    `json:"constituency"`
	State        string    `json:"state,omitempty"`
	Year         int       `json:"year"`
	Winner       *MapEntry `json:"winner,omitempty"`
}

// SummaryResponse reports what was loaded at startup
type SummaryResponse struct {
	Results    LoadStats     `json:"results"`
	Boundaries BoundaryStats `json:"boundaries"`
	Years      int           `json:"years"`
	States     int           `json:"states"`
	Parties    int           `json:"parties"`
}
