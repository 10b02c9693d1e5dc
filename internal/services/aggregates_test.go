package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"election-dashboard/internal/models"
)

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

func winner(state string, year int, pc, candidate, party string, turnout float64) models.ResultRecord {
	return models.ResultRecord{
		State:         state,
		Year:          intPtr(year),
		PcName:        pc,
		JoinKey:       JoinKey(pc),
		CandidateName: candidate,
		Party:         party,
		Votes:         turnout * 1000,
		Electors:      100000,
		Turnout:       turnout,
	}
}

func TestMarginBucket(t *testing.T) {
	tests := []struct {
		name   string
		margin *float64
		want   string
	}{
		{"missing", nil, GrayBucket},
		{"zero", floatPtr(0), "0-1"},
		{"upper edge of first", floatPtr(1), "0-1"},
		{"just above edge", floatPtr(1.0001), "1-5"},
		{"upper edge of 10-15", floatPtr(15), "10-15"},
		{"middle", floatPtr(25), "20-30"},
		{"hundred", floatPtr(100), "50-100"},
		{"negative", floatPtr(-0.5), GrayBucket},
		{"above hundred", floatPtr(100.5), GrayBucket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MarginBucket(tt.margin))
		})
	}
}

func TestAvailableYearsAndStates(t *testing.T) {
	records := []models.ResultRecord{
		winner("Kerala", 2019, "A", "x", "INC", 70),
		winner("Goa", 2014, "B", "y", "BJP", 70),
		winner("Kerala", 2014, "C", "z", "INC", 70),
		{State: "", Party: "BJP"},
	}

	assert.Equal(t, []int{2014, 2019}, AvailableYears(records))
	assert.Equal(t, []string{"Goa", "Kerala"}, AvailableStates(records))
	assert.Empty(t, AvailableYears(nil))
}

func TestStatePartyDominance(t *testing.T) {
	records := []models.ResultRecord{
		// Kerala 2014: INC 2, CPM 1
		winner("Kerala", 2014, "A", "a", "INC", 70),
		winner("Kerala", 2014, "B", "b", "INC", 70),
		winner("Kerala", 2014, "C", "c", "CPM", 70),
		// Kerala 2019: INC 1, CPM 1, tie goes to CPM
		winner("Kerala", 2019, "A", "a", "INC", 70),
		winner("Kerala", 2019, "B", "b", "CPM", 70),
		// Goa 2019: BJP 1
		winner("Goa", 2019, "N", "n", "BJP", 70),
	}

	rows := StatePartyDominance(records)
	assert.Equal(t, []models.DominanceRow{
		{State: "Goa", Party: "BJP", TimesDominated: 1},
		{State: "Kerala", Party: "CPM", TimesDominated: 1},
		{State: "Kerala", Party: "INC", TimesDominated: 1},
	}, rows)
}

func TestTopDominance(t *testing.T) {
	rows := []models.DominanceRow{
		{State: "A", Party: "X", TimesDominated: 1},
		{State: "B", Party: "Y", TimesDominated: 3},
		{State: "C", Party: "Z", TimesDominated: 1},
		{State: "D", Party: "W", TimesDominated: 2},
	}

	top := TopDominance(rows, 3)
	assert.Equal(t, []models.DominanceRow{
		{State: "B", Party: "Y", TimesDominated: 3},
		{State: "D", Party: "W", TimesDominated: 2},
		{State: "A", Party: "X", TimesDominated: 1},
	}, top)

	// input untouched
	assert.Equal(t, "A", rows[0].State)
	assert.Len(t, TopDominance(rows, 10), 4)
}

func TestTurnoutTop(t *testing.T) {
	records := []models.ResultRecord{
		winner("Kerala", 2019, "A", "a", "INC", 70),
		winner("Kerala", 2019, "B", "b", "INC", 90),
		winner("Kerala", 2019, "C", "c", "INC", 80),
		winner("Goa", 2019, "N", "n", "BJP", 60),
		{State: "Kerala", PcName: "No Year", Turnout: 99},
	}

	top := TurnoutTop(records, 2)
	require.Len(t, top, 3)
	assert.Equal(t, "N", top[0].PcName)
	assert.Equal(t, "B", top[1].PcName)
	assert.Equal(t, "C", top[2].PcName)
}

func TestTurnoutHeatmap(t *testing.T) {
	top := []models.ResultRecord{
		winner("Kerala", 2014, "Alpha", "a", "INC", 80),
		winner("Kerala", 2019, "Alpha", "a", "INC", 60),
		winner("Kerala", 2019, "Beta", "b", "INC", 90),
		winner("Kerala", 2009, "Gamma", "c", "INC", 70),
		winner("Kerala", 2009, "Delta", "d", "INC", 70),
		winner("Goa", 2019, "Other State", "e", "BJP", 99),
	}

	matrix := TurnoutHeatmap(top, "Kerala", 3)
	assert.False(t, matrix.Empty())
	assert.Equal(t, "Kerala", matrix.State)
	assert.Equal(t, []int{2009, 2014, 2019}, matrix.Years)
	// Beta 90, Alpha 70, Delta 70 and Gamma 70 tie broken by name
	assert.Equal(t, []string{"Beta", "Alpha", "Delta"}, matrix.Constituencies)
	assert.Equal(t, [][]float64{
		{0, 0, 90},
		{0, 80, 60},
		{70, 0, 0},
	}, matrix.Values)
}

func TestTurnoutHeatmapUnknownState(t *testing.T) {
	matrix := TurnoutHeatmap([]models.ResultRecord{winner("Goa", 2019, "N", "n", "BJP", 60)}, "Atlantis", HeatmapRows)
	assert.True(t, matrix.Empty())
	assert.Equal(t, "Atlantis", matrix.State)
}

func TestRepeatWinners(t *testing.T) {
	var records []models.ResultRecord
	for i := 0; i < 6; i++ {
		records = append(records, winner("Kerala", 1980+i*5, "A", "Veteran", "INC", 70))
	}
	for i := 0; i < 5; i++ {
		records = append(records, winner("Kerala", 1980+i*5, "B", "Five Timer", "CPM", 70))
	}
	// same candidate under another party counts separately
	records = append(records, winner("Kerala", 2019, "A", "Veteran", "BJP", 70))

	rows := RepeatWinners(records, RepeatWinnerMinWins)
	assert.Equal(t, []models.CandidateWins{
		{CandidateName: "Veteran", Party: "INC", Wins: 6},
	}, rows)
}

func TestPartyHistory(t *testing.T) {
	records := []models.ResultRecord{
		winner("Kerala", 2014, "A", "a", "INC", 70),
		winner("Goa", 2014, "B", "b", "INC", 80),
		winner("Goa", 2014, "C", "c", "BJP", 60),
		winner("Goa", 2019, "C", "c", "BJP", 50),
		winner("Goa", 2019, "D", "d", "Shiv Sena", 90),
		{State: "Goa", Year: intPtr(2019), PcName: "", Party: "BJP", Votes: 1000, Turnout: 70},
	}

	history := PartyHistory(records, MajorParties)
	require.Len(t, history, 3)

	assert.Equal(t, models.PartyYear{Year: 2014, Party: "BJP", Seats: 1, TotalVotes: 60000, AvgTurnout: 60}, history[0])
	assert.Equal(t, 2014, history[1].Year)
	assert.Equal(t, "INC", history[1].Party)
	assert.Equal(t, 2, history[1].Seats)
	assert.InDelta(t, 150000, history[1].TotalVotes, 1e-6)
	assert.InDelta(t, 75, history[1].AvgTurnout, 1e-9)

	// unnamed constituency adds votes and turnout but no seat
	assert.Equal(t, 2019, history[2].Year)
	assert.Equal(t, 1, history[2].Seats)
	assert.InDelta(t, 51000, history[2].TotalVotes, 1e-6)
	assert.InDelta(t, 60, history[2].AvgTurnout, 1e-9)

	totals := HistoryTotals(history)
	require.Len(t, totals, 2)
	assert.Equal(t, 2014, totals[0].Year)
	assert.InDelta(t, 210000, totals[0].TotalVotes, 1e-6)
	assert.InDelta(t, 67.5, totals[0].AvgTurnout, 1e-9)
	assert.Equal(t, 2019, totals[1].Year)

	assert.Equal(t, []string{"BJP", "INC"}, HistoryParties(history))
}
