package services

import (
	"sort"

	"golang.org/x/exp/slices"

	"election-dashboard/internal/models"
)

// Aggregation parameters of the dashboard views
const (
	DominanceTopN       = 25
	TurnoutTopPerYear   = 10
	HeatmapRows         = 10
	RepeatWinnerMinWins = 5 // strictly more wins than this
	GrayBucket          = "gray"
	OtherParty          = "OTHER"
)

// MajorParties are the parties tracked by the historical performance view
var MajorParties = []string{"BJP", "INC", "BSP", "AAP", "CPM", "TMC", "JDU", "SP"}

// MarginBuckets are the margin% bucket labels in ascending order. Bucket i
// covers (MarginEdges[i], MarginEdges[i+1]]; the first bucket also includes 0.
var (
	MarginBuckets = []string{"0-1", "1-5", "5-10", "10-15", "15-20", "20-30", "30-40", "40-50", "50-100"}
	MarginEdges   = []float64{0, 1, 5, 10, 15, 20, 30, 40, 50, 100}
)

// MarginBucket returns the bucket label of a margin percentage, or GrayBucket
// when the margin is missing or outside [0, 100]
func MarginBucket(margin *float64) string {
	if margin == nil {
		return GrayBucket
	}
	m := *margin
	if m < MarginEdges[0] || m > MarginEdges[len(MarginEdges)-1] {
		return GrayBucket
	}
	for i := 1; i < len(MarginEdges); i++ {
		if m <= MarginEdges[i] {
			return MarginBuckets[i-1]
		}
	}
	return GrayBucket
}

// AvailableYears returns the sorted distinct election years
func AvailableYears(records []models.ResultRecord) []int {
	seen := make(map[int]bool)
	years := make([]int, 0)
	for _, r := range records {
		if r.Year != nil && !seen[*r.Year] {
			seen[*r.Year] = true
			years = append(years, *r.Year)
		}
	}
	slices.Sort(years)
	return years
}

// AvailableStates returns the sorted distinct non-empty state names
func AvailableStates(records []models.ResultRecord) []string {
	seen := make(map[string]bool)
	states := make([]string, 0)
	for _, r := range records {
		if r.State != "" && !seen[r.State] {
			seen[r.State] = true
			states = append(states, r.State)
		}
	}
	slices.Sort(states)
	return states
}

type stateYear struct {
	state string
	year  int
}

// StatePartyDominance counts, for each (state, party), the number of election
// years in which the party won the most seats in that state. Ties within a
// state-year go to the alphabetically first party. Rows are ordered by state
// then party.
func StatePartyDominance(records []models.ResultRecord) []models.DominanceRow {
	seats := make(map[stateYear]map[string]int)
	for _, r := range records {
		if r.State == "" || r.Party == "" || r.Year == nil {
			continue
		}
		key := stateYear{state: r.State, year: *r.Year}
		if seats[key] == nil {
			seats[key] = make(map[string]int)
		}
		seats[key][r.Party]++
	}

	type stateParty struct{ state, party string }
	times := make(map[stateParty]int)
	for key, parties := range seats {
		dominant, best := "", -1
		for party, n := range parties {
			if n > best || (n == best && party < dominant) {
				dominant, best = party, n
			}
		}
		times[stateParty{key.state, dominant}]++
	}

	rows := make([]models.DominanceRow, 0, len(times))
	for key, n := range times {
		rows = append(rows, models.DominanceRow{State: key.state, Party: key.party, TimesDominated: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].State != rows[j].State {
			return rows[i].State < rows[j].State
		}
		return rows[i].Party < rows[j].Party
	})
	return rows
}

// TopDominance returns the n rows with the highest times_dominated. Equal
// counts keep their state/party order.
func TopDominance(rows []models.DominanceRow, n int) []models.DominanceRow {
	top := slices.Clone(rows)
	slices.SortStableFunc(top, func(a, b models.DominanceRow) int {
		return b.TimesDominated - a.TimesDominated
	})
	if len(top) > n {
		top = top[:n]
	}
	return top
}

// TurnoutTop keeps, for every (state, year), the rows with the highest turnout
func TurnoutTop(records []models.ResultRecord, perGroup int) []models.ResultRecord {
	groups := make(map[stateYear][]models.ResultRecord)
	keys := make([]stateYear, 0)
	for _, r := range records {
		if r.State == "" || r.Year == nil {
			continue
		}
		key := stateYear{state: r.State, year: *r.Year}
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], r)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].state != keys[j].state {
			return keys[i].state < keys[j].state
		}
		return keys[i].year < keys[j].year
	})

	top := make([]models.ResultRecord, 0, len(keys)*perGroup)
	for _, key := range keys {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Turnout > group[j].Turnout
		})
		if len(group) > perGroup {
			group = group[:perGroup]
		}
		top = append(top, group...)
	}
	return top
}

// TurnoutHeatmap pivots the turnout-top rows of one state into a
// constituency × year grid of mean turnout. Missing cells are 0. Rows are the
// constituencies with the highest mean turnout, ties broken by name.
func TurnoutHeatmap(turnoutTop []models.ResultRecord, state string, rows int) models.TurnoutMatrix {
	matrix := models.TurnoutMatrix{State: state}

	type cell struct {
		sum   float64
		count int
	}
	cells := make(map[string]map[int]*cell)
	totals := make(map[string]*cell)
	yearSet := make(map[int]bool)

	for _, r := range turnoutTop {
		if r.State != state || r.Year == nil || r.PcName == "" {
			continue
		}
		name := r.PcName
		if cells[name] == nil {
			cells[name] = make(map[int]*cell)
			totals[name] = &cell{}
		}
		c := cells[name][*r.Year]
		if c == nil {
			c = &cell{}
			cells[name][*r.Year] = c
		}
		c.sum += r.Turnout
		c.count++
		totals[name].sum += r.Turnout
		totals[name].count++
		yearSet[*r.Year] = true
	}

	if len(cells) == 0 {
		return matrix
	}

	names := make([]string, 0, len(cells))
	for name := range cells {
		names = append(names, name)
	}
	mean := func(name string) float64 {
		return totals[name].sum / float64(totals[name].count)
	}
	sort.Slice(names, func(i, j int) bool {
		mi, mj := mean(names[i]), mean(names[j])
		if mi != mj {
			return mi > mj
		}
		return names[i] < names[j]
	})
	if len(names) > rows {
		names = names[:rows]
	}

	for year := range yearSet {
		matrix.Years = append(matrix.Years, year)
	}
	slices.Sort(matrix.Years)

	matrix.Constituencies = names
	matrix.Values = make([][]float64, len(names))
	for i, name := range names {
		matrix.Values[i] = make([]float64, len(matrix.Years))
		for j, year := range matrix.Years {
			if c := cells[name][year]; c != nil {
				matrix.Values[i][j] = c.sum / float64(c.count)
			}
		}
	}
	return matrix
}

// RepeatWinners counts wins per (candidate, party) and keeps those with more
// than minWins. Rows are ordered by party then candidate.
func RepeatWinners(records []models.ResultRecord, minWins int) []models.CandidateWins {
	type candidateParty struct{ candidate, party string }
	wins := make(map[candidateParty]int)
	for _, r := range records {
		if r.CandidateName == "" {
			continue
		}
		wins[candidateParty{r.CandidateName, r.Party}]++
	}

	rows := make([]models.CandidateWins, 0)
	for key, n := range wins {
		if n > minWins {
			rows = append(rows, models.CandidateWins{CandidateName: key.candidate, Party: key.party, Wins: n})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Party != rows[j].Party {
			return rows[i].Party < rows[j].Party
		}
		return rows[i].CandidateName < rows[j].CandidateName
	})
	return rows
}

// PartyHistory aggregates seats, votes and mean turnout per (year, party) for
// the given parties. Rows are ordered by year then party.
func PartyHistory(records []models.ResultRecord, parties []string) []models.PartyYear {
	type yearParty struct {
		year  int
		party string
	}
	type acc struct {
		rows       int
		seats      int
		votes      float64
		turnoutSum float64
	}
	groups := make(map[yearParty]*acc)
	for _, r := range records {
		if r.Year == nil || !slices.Contains(parties, r.Party) {
			continue
		}
		key := yearParty{*r.Year, r.Party}
		a := groups[key]
		if a == nil {
			a = &acc{}
			groups[key] = a
		}
		a.rows++
		// seats count named constituencies only
		if r.PcName != "" {
			a.seats++
		}
		a.votes += r.Votes
		a.turnoutSum += r.Turnout
	}

	rows := make([]models.PartyYear, 0, len(groups))
	for key, a := range groups {
		rows = append(rows, models.PartyYear{
			Year:       key.year,
			Party:      key.party,
			Seats:      a.seats,
			TotalVotes: a.votes,
			AvgTurnout: a.turnoutSum / float64(a.rows),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Party < rows[j].Party
	})
	return rows
}

// HistoryTotals rolls PartyHistory rows up per year: votes are summed and the
// average turnout is the mean of the party averages
func HistoryTotals(history []models.PartyYear) []models.YearTotals {
	totals := make([]models.YearTotals, 0)
	counts := make([]int, 0)
	for _, row := range history {
		n := len(totals)
		if n == 0 || totals[n-1].Year != row.Year {
			totals = append(totals, models.YearTotals{Year: row.Year})
			counts = append(counts, 0)
			n++
		}
		totals[n-1].TotalVotes += row.TotalVotes
		totals[n-1].AvgTurnout += row.AvgTurnout
		counts[n-1]++
	}
	for i := range totals {
		totals[i].AvgTurnout /= float64(counts[i])
	}
	return totals
}

// HistoryParties returns the parties of a history in order of first appearance
func HistoryParties(history []models.PartyYear) []string {
	parties := make([]string, 0)
	for _, row := range history {
		if !slices.Contains(parties, row.Party) {
			parties = append(parties, row.Party)
		}
	}
	return parties
}
