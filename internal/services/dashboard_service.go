package services

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"election-dashboard/internal/config"
	"election-dashboard/internal/models"
)

// Dataset is everything computed once at startup. It is read-only afterwards.
type Dataset struct {
	Records       []models.ResultRecord
	ResultStats   models.LoadStats
	Boundaries    *Boundaries
	Years         []int
	States        []string
	Parties       []string
	Dominance     []models.DominanceRow
	TopDominance  []models.DominanceRow
	TurnoutTop    []models.ResultRecord
	RepeatWinners []models.CandidateWins
	History       []models.PartyYear
	HistoryTotals []models.YearTotals

	byYear map[int][]models.ResultRecord
}

// NewDataset derives every aggregate the views read from the cleaned records
func NewDataset(records []models.ResultRecord, stats models.LoadStats, boundaries *Boundaries) *Dataset {
	d := &Dataset{
		Records:     records,
		ResultStats: stats,
		Boundaries:  boundaries,
		Years:       AvailableYears(records),
		States:      AvailableStates(records),
		byYear:      make(map[int][]models.ResultRecord),
	}

	for _, r := range records {
		if r.Year != nil {
			d.byYear[*r.Year] = append(d.byYear[*r.Year], r)
		}
		if !slices.Contains(d.Parties, r.Party) {
			d.Parties = append(d.Parties, r.Party)
		}
	}
	slices.Sort(d.Parties)

	d.Dominance = StatePartyDominance(records)
	d.TopDominance = TopDominance(d.Dominance, DominanceTopN)
	d.TurnoutTop = TurnoutTop(records, TurnoutTopPerYear)
	d.RepeatWinners = RepeatWinners(records, RepeatWinnerMinWins)
	d.History = PartyHistory(records, MajorParties)
	d.HistoryTotals = HistoryTotals(d.History)
	return d
}

// YearRecords returns the rows of one election year
func (d *Dataset) YearRecords(year int) []models.ResultRecord {
	return d.byYear[year]
}

// LoadDataset reads both input files in parallel and builds the dataset
func LoadDataset(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dataset, error) {
	results := NewResultsService(cfg.Data.PartyAliases, logger)
	boundaries := NewBoundaryService(cfg.Data.SimplifyTolerance, logger)

	var (
		records  []models.ResultRecord
		stats    models.LoadStats
		geometry *Boundaries
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, stats, err = results.LoadFile(cfg.ResultsPath())
		return err
	})
	g.Go(func() error {
		var err error
		geometry, err = boundaries.LoadFile(cfg.BoundariesPath())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no usable rows in %s", cfg.ResultsPath())
	}
	return NewDataset(records, stats, geometry), nil
}

// DashboardService renders the dashboard views from a Dataset
type DashboardService struct {
	data      *Dataset
	fuzzyJoin bool
	cache     *cache.Cache
	logger    *zap.Logger
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(data *Dataset, fuzzyJoin bool, ttl, cleanup time.Duration, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		data:      data,
		fuzzyJoin: fuzzyJoin,
		cache:     cache.New(ttl, cleanup),
		logger:    logger.Named("dashboard"),
	}
}

// Options returns the dropdown values: every year (latest by default) and
// every state (first by default)
func (s *DashboardService) Options() models.Options {
	opts := models.Options{
		Years:  s.data.Years,
		States: s.data.States,
	}
	if n := len(opts.Years); n > 0 {
		opts.DefaultYear = opts.Years[n-1]
	}
	if len(opts.States) > 0 {
		opts.DefaultState = opts.States[0]
	}
	return opts
}

// DefaultYear returns the latest election year
func (s *DashboardService) DefaultYear() int {
	return s.Options().DefaultYear
}

// DefaultState returns the first state in sort order
func (s *DashboardService) DefaultState() string {
	return s.Options().DefaultState
}

// GeoJSON returns the simplified boundary FeatureCollection
func (s *DashboardService) GeoJSON() []byte {
	return s.data.Boundaries.GeoJSON
}

// MapEntries joins the boundaries with the winners of year
func (s *DashboardService) MapEntries(year int) []models.MapEntry {
	key := fmt.Sprintf("entries:%d", year)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]models.MapEntry)
	}

	entries := JoinYear(s.data.Boundaries.Constituencies, s.data.YearRecords(year), s.fuzzyJoin)
	matched := 0
	for _, e := range entries {
		if e.Matched {
			matched++
		}
	}
	s.logger.Debug("joined boundaries with results",
		zap.Int("year", year),
		zap.Int("features", len(entries)),
		zap.Int("matched", matched),
	)

	s.cache.SetDefault(key, entries)
	return entries
}

func (s *DashboardService) cachedFigure(key string, build func() *models.Figure) *models.Figure {
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*models.Figure)
	}
	fig := build()
	s.cache.SetDefault(key, fig)
	return fig
}

// PartyMap renders the winning-party choropleth of year
func (s *DashboardService) PartyMap(year int) *models.Figure {
	return s.cachedFigure(fmt.Sprintf("party-map:%d", year), func() *models.Figure {
		return PartyMapFigure(s.MapEntries(year), year)
	})
}

// MarginMap renders the margin-bucket choropleth of year
func (s *DashboardService) MarginMap(year int) *models.Figure {
	return s.cachedFigure(fmt.Sprintf("margin-map:%d", year), func() *models.Figure {
		return MarginMapFigure(s.MapEntries(year), year)
	})
}

// Sunburst renders the repeat winners sunburst
func (s *DashboardService) Sunburst() *models.Figure {
	return s.cachedFigure("sunburst", func() *models.Figure {
		return SunburstFigure(s.data.RepeatWinners)
	})
}

// History renders the historical party performance chart
func (s *DashboardService) History() *models.Figure {
	return s.cachedFigure("history", func() *models.Figure {
		return HistoryFigure(s.data.History, s.data.HistoryTotals)
	})
}

// TurnoutHeatmap renders the turnout heatmap of state. Only known states are
// cached; anything else renders the empty heatmap.
func (s *DashboardService) TurnoutHeatmap(state string) *models.Figure {
	build := func() *models.Figure {
		return TurnoutHeatmapFigure(TurnoutHeatmap(s.data.TurnoutTop, state, HeatmapRows))
	}
	if !slices.Contains(s.data.States, state) {
		return build()
	}
	return s.cachedFigure("turnout-heatmap:"+state, build)
}

// Dominance renders the regional party dominance bar chart
func (s *DashboardService) Dominance() *models.Figure {
	return s.cachedFigure("dominance", func() *models.Figure {
		return DominanceFigure(s.data.TopDominance)
	})
}

// Locate finds the constituency containing a point and its winner in year
func (s *DashboardService) Locate(lat, lng float64, year int) (*models.LocateResponse, bool) {
	constituency, ok := s.data.Boundaries.Index.Locate(lat, lng)
	if !ok {
		return nil, false
	}

	response := &models.LocateResponse{
		Lat:          lat,
		Lng:          lng,
		Constituency: constituency.Name,
		State:        constituency.State,
		Year:         year,
	}
	entries := s.MapEntries(year)
	if constituency.FID < len(entries) && entries[constituency.FID].Matched {
		winner := entries[constituency.FID]
		response.Winner = &winner
	}
	return response, true
}

// Summary reports what was loaded at startup
func (s *DashboardService) Summary() models.SummaryResponse {
	return models.SummaryResponse{
		Results:    s.data.ResultStats,
		Boundaries: s.data.Boundaries.Stats,
		Years:      len(s.data.Years),
		States:     len(s.data.States),
		Parties:    len(s.data.Parties),
	}
}
