package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"election-dashboard/internal/config"
)

const dashboardCSV = `state,year,Pc_name,candidate_name,party,votes,electors,Turnout,margin%
Delhi,2014,New Delhi,Meenakshi Lekhi,Bharatiya Janata Party,"900","1,500",60%,15.3%
Uttar Pradesh,2014,Ghaziabad,V K Singh,Bharatiya Janata Party,"800","1,600",50%,40.1%
Delhi,2019,New Delhi,Meenakshi Lekhi,Bharatiya Janata Party,"1,000","1,600",62.5%,33.1%
Uttar Pradesh,2019,Ghaziabad,V K Singh,Indian National Congress,"700","1,400",50%,0.4%
`

func newTestDataset(t *testing.T) *Dataset {
	t.Helper()
	records, stats, err := LoadResults(strings.NewReader(dashboardCSV), config.DefaultPartyAliases)
	require.NoError(t, err)
	return NewDataset(records, stats, loadTestBoundaries(t))
}

func newTestDashboard(t *testing.T) *DashboardService {
	t.Helper()
	return NewDashboardService(newTestDataset(t), true, time.Minute, time.Minute, zap.NewNop())
}

func TestNewDataset(t *testing.T) {
	d := newTestDataset(t)

	assert.Equal(t, []int{2014, 2019}, d.Years)
	assert.Equal(t, []string{"Delhi", "Uttar Pradesh"}, d.States)
	assert.Equal(t, []string{"BJP", "INC"}, d.Parties)
	assert.Len(t, d.YearRecords(2019), 2)
	assert.Empty(t, d.YearRecords(1990))
	assert.NotEmpty(t, d.Dominance)
	assert.Len(t, d.TurnoutTop, 4)
	assert.Empty(t, d.RepeatWinners)
	assert.Len(t, d.HistoryTotals, 2)
}

func TestDashboardOptions(t *testing.T) {
	s := newTestDashboard(t)

	opts := s.Options()
	assert.Equal(t, []int{2014, 2019}, opts.Years)
	assert.Equal(t, 2019, opts.DefaultYear)
	assert.Equal(t, "Delhi", opts.DefaultState)
	assert.Equal(t, 2019, s.DefaultYear())
	assert.Equal(t, "Delhi", s.DefaultState())
}

func TestDashboardPartyMap(t *testing.T) {
	s := newTestDashboard(t)

	fig := s.PartyMap(2019)
	assert.Equal(t, []string{"BJP", "INC"}, traceNames(fig))
	assert.Equal(t, []int{0}, fig.Data[0].Locations)
	assert.Equal(t, []int{1}, fig.Data[1].Locations)

	// cached
	assert.Same(t, fig, s.PartyMap(2019))

	unknown := s.PartyMap(1800)
	assert.Equal(t, []string{OtherParty}, traceNames(unknown))
}

func TestDashboardMarginMap(t *testing.T) {
	s := newTestDashboard(t)

	fig := s.MarginMap(2014)
	assert.Equal(t, []string{"15-20", "40-50"}, traceNames(fig))
}

func TestDashboardTurnoutHeatmap(t *testing.T) {
	s := newTestDashboard(t)

	fig := s.TurnoutHeatmap("Delhi")
	require.Len(t, fig.Data, 1)
	assert.Equal(t, []string{"New Delhi"}, fig.Data[0].Y)

	empty := s.TurnoutHeatmap("Atlantis")
	assert.Empty(t, empty.Data)
}

func TestDashboardTurnoutHeatmapCachesKnownStatesOnly(t *testing.T) {
	s := newTestDashboard(t)

	s.TurnoutHeatmap("Delhi")
	_, cached := s.cache.Get("turnout-heatmap:Delhi")
	assert.True(t, cached)

	before := s.cache.ItemCount()
	for _, state := range []string{"Atlantis", "Lemuria", "delhi", ""} {
		assert.Empty(t, s.TurnoutHeatmap(state).Data)
	}
	assert.Equal(t, before, s.cache.ItemCount())
}

func TestDashboardStaticFigures(t *testing.T) {
	s := newTestDashboard(t)

	assert.NotEmpty(t, s.History().Data)
	assert.NotEmpty(t, s.Dominance().Data)
	require.Len(t, s.Sunburst().Data, 1)
	assert.Empty(t, s.Sunburst().Data[0].IDs)
}

func TestDashboardLocate(t *testing.T) {
	s := newTestDashboard(t)

	resp, ok := s.Locate(28.5, 78.5, 2019)
	require.True(t, ok)
	assert.Equal(t, "Ghaziabad", resp.Constituency)
	assert.Equal(t, "Uttar Pradesh", resp.State)
	require.NotNil(t, resp.Winner)
	assert.Equal(t, "INC", resp.Winner.Party)
	assert.Equal(t, "V K Singh", resp.Winner.CandidateName)

	resp, ok = s.Locate(28.5, 77.5, 1990)
	require.True(t, ok)
	assert.Nil(t, resp.Winner)

	_, ok = s.Locate(0, 0, 2019)
	assert.False(t, ok)
}

func TestDashboardSummary(t *testing.T) {
	summary := newTestDashboard(t).Summary()

	assert.Equal(t, 4, summary.Results.RowsKept)
	assert.Equal(t, 2, summary.Boundaries.Features)
	assert.Equal(t, 2, summary.Years)
	assert.Equal(t, 2, summary.States)
	assert.Equal(t, 2, summary.Parties)
}

func TestLoadDataset(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "results.csv"), []byte(dashboardCSV), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "boundaries.geojson"), []byte(boundariesGeoJSON), 0644))

	cfg := config.Default()
	cfg.Data.Dir = dir
	cfg.Data.ResultsFile = "results.csv"
	cfg.Data.BoundariesFile = "boundaries.geojson"

	d, err := LoadDataset(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, d.Records, 4)
	assert.Len(t, d.Boundaries.Constituencies, 2)

	cfg.Data.BoundariesFile = "missing.geojson"
	_, err = LoadDataset(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestLoadDatasetWithoutUsableRows(t *testing.T) {
	dir := t.TempDir()
	header := "state,year,Pc_name,candidate_name,party,votes,electors,Turnout,margin%\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "results.csv"), []byte(header+"Goa,2019,North Goa,x,y,,,,\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "boundaries.geojson"), []byte(boundariesGeoJSON), 0644))

	cfg := config.Default()
	cfg.Data.Dir = dir
	cfg.Data.ResultsFile = "results.csv"
	cfg.Data.BoundariesFile = "boundaries.geojson"

	_, err := LoadDataset(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable rows")
}
