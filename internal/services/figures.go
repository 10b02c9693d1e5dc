package services

import (
	"fmt"
	"sort"

	"golang.org/x/exp/slices"

	"election-dashboard/internal/models"
)

// Figure titles
const (
	historyTitle      = "Historical Performance (1962–2024)"
	historyEmptyTitle = "No historical data available."
	heatmapEmptyTitle = "No data available for selected state."
	dominanceTitle    = "Most Dominant Parties by State (1962–2024)"
	sunburstTitle     = "Candidates Who Won More Than 5 Times (by Party)[The Pro Players]"
)

// GeoJSONURL is where the browser fetches the boundary FeatureCollection
// referenced by the choropleth traces
const GeoJSONURL = "/api/geojson"

// PartyColors is the party palette of the constituency map
var PartyColors = map[string]string{
	"BJP":   "#FF9933",
	"INC":   "#008000",
	"BSP":   "#0000FF",
	"AAP":   "#00CED1",
	"CPM":   "#FF0000",
	"TMC":   "#00FF00",
	"JDU":   "#FFFF00",
	"SP":    "#800080",
	"OTHER": "#808080",
}

// MarginColors is the palette of the margin% map
var MarginColors = map[string]string{
	"0-1":    "maroon",
	"1-5":    "red",
	"5-10":   "orange",
	"10-15":  "yellow",
	"15-20":  "lime",
	"20-30":  "lightgreen",
	"30-40":  "darkgreen",
	"40-50":  "skyblue",
	"50-100": "darkblue",
	"gray":   "gray",
}

// fallbackColors is plotly's default qualitative palette, used for parties
// without a fixed color
var fallbackColors = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

func boolPtr(b bool) *bool {
	return &b
}

// partyColor returns the fixed color of a party or a palette color picked by
// its position among the unpaletted parties
func partyColor(party string, position int) string {
	if c, ok := PartyColors[party]; ok {
		return c
	}
	return fallbackColors[position%len(fallbackColors)]
}

// orderParties sorts party labels alphabetically with OTHER last
func orderParties(parties []string) []string {
	ordered := slices.Clone(parties)
	sort.Slice(ordered, func(i, j int) bool {
		if (ordered[i] == OtherParty) != (ordered[j] == OtherParty) {
			return ordered[j] == OtherParty
		}
		return ordered[i] < ordered[j]
	})
	return ordered
}

func choroplethLayout(title string, margin models.Margin) models.Layout {
	return models.Layout{
		Title:  models.Title{Text: title},
		Geo:    &models.Geo{FitBounds: "locations", Visible: false},
		Margin: &margin,
		Font:   &models.Font{Size: 12},
		Height: 1000,
		Width:  1650,
	}
}

// categoryTrace builds one single-color choropleth trace for a category
func categoryTrace(name, color string, entries []models.MapEntry, hover func(models.MapEntry) []string, template string) models.Trace {
	locations := make([]int, len(entries))
	z := make([]float64, len(entries))
	custom := make([][]string, len(entries))
	for i, e := range entries {
		locations[i] = e.FID
		z[i] = 1
		custom[i] = hover(e)
	}
	return models.Trace{
		Type:          "choropleth",
		Name:          name,
		LegendGroup:   name,
		GeoJSON:       GeoJSONURL,
		FeatureIDKey:  "properties." + FeatureIDKey,
		Locations:     locations,
		Z:             z,
		ColorScale:    [][]interface{}{{0, color}, {1, color}},
		ShowScale:     boolPtr(false),
		ShowLegend:    boolPtr(true),
		CustomData:    custom,
		HoverTemplate: template,
		Marker:        &models.Marker{Line: &models.Line{Color: "white"}},
	}
}

// PartyMapFigure colors every constituency by the party that won it in year
func PartyMapFigure(entries []models.MapEntry, year int) *models.Figure {
	groups := make(map[string][]models.MapEntry)
	for _, e := range entries {
		groups[e.Party] = append(groups[e.Party], e)
	}
	parties := make([]string, 0, len(groups))
	for party := range groups {
		parties = append(parties, party)
	}

	fig := &models.Figure{
		Data:   make([]models.Trace, 0, len(groups)),
		Layout: choroplethLayout(fmt.Sprintf("Winning Party by Constituency (%d)", year), models.Margin{T: 50}),
	}
	unpaletted := 0
	for _, party := range orderParties(parties) {
		color := partyColor(party, unpaletted)
		if _, ok := PartyColors[party]; !ok {
			unpaletted++
		}
		fig.Data = append(fig.Data, categoryTrace(party, color, groups[party],
			func(e models.MapEntry) []string { return []string{e.PcName, e.CandidateName} },
			"<b>%{customdata[0]}</b><br>candidate_name=%{customdata[1]}<extra>"+party+"</extra>",
		))
	}
	return fig
}

// MarginMapFigure colors every constituency by the margin bucket of its winner in year
func MarginMapFigure(entries []models.MapEntry, year int) *models.Figure {
	groups := make(map[string][]models.MapEntry)
	for _, e := range entries {
		groups[e.MarginBucket] = append(groups[e.MarginBucket], e)
	}

	fig := &models.Figure{
		Data:   make([]models.Trace, 0, len(groups)),
		Layout: choroplethLayout(fmt.Sprintf("Victory Margin%% by Constituency (%d)", year), models.Margin{R: 10, T: 100, L: 10, B: 10}),
	}
	for _, bucket := range append(slices.Clone(MarginBuckets), GrayBucket) {
		group, ok := groups[bucket]
		if !ok {
			continue
		}
		fig.Data = append(fig.Data, categoryTrace(bucket, MarginColors[bucket], group,
			func(e models.MapEntry) []string { return []string{e.PcName, e.Party} },
			"<b>%{customdata[0]}</b><br>party=%{customdata[1]}<extra>"+bucket+"</extra>",
		))
	}
	return fig
}

// SunburstFigure shows repeat winners with parties as the inner ring
func SunburstFigure(winners []models.CandidateWins) *models.Figure {
	trace := models.Trace{
		Type:         "sunburst",
		BranchValues: "total",
		Marker:       &models.Marker{},
	}

	partyTotals := make(map[string]int)
	parties := make([]string, 0)
	for _, w := range winners {
		if _, ok := partyTotals[w.Party]; !ok {
			parties = append(parties, w.Party)
		}
		partyTotals[w.Party] += w.Wins
	}

	colors := make(map[string]string, len(parties))
	unpaletted := 0
	for _, party := range parties {
		colors[party] = partyColor(party, unpaletted)
		if _, ok := PartyColors[party]; !ok {
			unpaletted++
		}
		trace.IDs = append(trace.IDs, party)
		trace.Labels = append(trace.Labels, party)
		trace.Parents = append(trace.Parents, "")
		trace.Values = append(trace.Values, float64(partyTotals[party]))
		trace.Marker.Colors = append(trace.Marker.Colors, colors[party])
	}
	for _, w := range winners {
		trace.IDs = append(trace.IDs, w.Party+"/"+w.CandidateName)
		trace.Labels = append(trace.Labels, w.CandidateName)
		trace.Parents = append(trace.Parents, w.Party)
		trace.Values = append(trace.Values, float64(w.Wins))
		trace.Marker.Colors = append(trace.Marker.Colors, colors[w.Party])
	}

	return &models.Figure{
		Data: []models.Trace{trace},
		Layout: models.Layout{
			Title:  models.Title{Text: sunburstTitle},
			Margin: &models.Margin{T: 50, L: 450},
			Font:   &models.Font{Size: 14},
			Height: 1300,
			Width:  1300,
		},
	}
}

// HistoryFigure plots seats per major party with total votes and average
// turnout on a secondary axis
func HistoryFigure(history []models.PartyYear, totals []models.YearTotals) *models.Figure {
	if len(history) == 0 {
		return &models.Figure{
			Data:   []models.Trace{},
			Layout: models.Layout{Title: models.Title{Text: historyEmptyTitle}},
		}
	}

	fig := &models.Figure{
		Data: make([]models.Trace, 0),
		Layout: models.Layout{
			Title:     models.Title{Text: historyTitle},
			XAxis:     &models.Axis{Title: &models.Title{Text: "Year"}},
			YAxis:     &models.Axis{Title: &models.Title{Text: "Seats Won"}},
			YAxis2:    &models.Axis{Title: &models.Title{Text: "Votes / Turnout (%)"}, Overlaying: "y", Side: "right"},
			HoverMode: "x unified",
			Height:    900,
			Width:     1500,
		},
	}

	for _, party := range HistoryParties(history) {
		years := make([]int, 0)
		seats := make([]int, 0)
		for _, row := range history {
			if row.Party == party {
				years = append(years, row.Year)
				seats = append(seats, row.Seats)
			}
		}
		fig.Data = append(fig.Data, models.Trace{
			Type: "scatter",
			Mode: "lines+markers",
			Name: party,
			X:    years,
			Y:    seats,
		})
	}

	years := make([]int, len(totals))
	votes := make([]float64, len(totals))
	turnout := make([]float64, len(totals))
	for i, t := range totals {
		years[i], votes[i], turnout[i] = t.Year, t.TotalVotes, t.AvgTurnout
	}
	fig.Data = append(fig.Data,
		models.Trace{
			Type:  "scatter",
			Mode:  "lines",
			Name:  "Total Votes",
			X:     years,
			Y:     votes,
			YAxis: "y2",
			Line:  &models.Line{Color: "black", Dash: "dot"},
		},
		models.Trace{
			Type:  "scatter",
			Mode:  "lines",
			Name:  "Avg Turnout",
			X:     years,
			Y:     turnout,
			YAxis: "y2",
			Line:  &models.Line{Color: "gray", Dash: "dash"},
		},
	)
	return fig
}

// TurnoutHeatmapFigure renders a state's constituency × year turnout grid
func TurnoutHeatmapFigure(matrix models.TurnoutMatrix) *models.Figure {
	if matrix.Empty() {
		return &models.Figure{
			Data: []models.Trace{},
			Layout: models.Layout{
				Title: models.Title{Text: heatmapEmptyTitle},
				XAxis: &models.Axis{Title: &models.Title{Text: "Year"}},
				YAxis: &models.Axis{Title: &models.Title{Text: "Constituency"}},
			},
		}
	}

	years := make([]string, len(matrix.Years))
	for i, y := range matrix.Years {
		years[i] = fmt.Sprint(y)
	}
	return &models.Figure{
		Data: []models.Trace{{
			Type:          "heatmap",
			X:             years,
			Y:             matrix.Constituencies,
			Z:             matrix.Values,
			ColorScale:    "Viridis",
			ColorBar:      &models.ColorBar{Title: models.Title{Text: "Turnout (%)"}},
			HoverTemplate: "Year=%{x}<br>Constituency=%{y}<br>Turnout (%)=%{z:.2f}<extra></extra>",
		}},
		Layout: models.Layout{
			Title:  models.Title{Text: fmt.Sprintf("Top 10 Turnout Constituencies in %s", matrix.State)},
			XAxis:  &models.Axis{Title: &models.Title{Text: "Year"}, Side: "top", Type: "category"},
			YAxis:  &models.Axis{Title: &models.Title{Text: "Constituency"}},
			Height: 900,
			Width:  1500,
		},
	}
}

// DominanceFigure renders the most frequent (state, party) dominance pairs as
// bars colored by party
func DominanceFigure(top []models.DominanceRow) *models.Figure {
	fig := &models.Figure{
		Data: make([]models.Trace, 0),
		Layout: models.Layout{
			Title:   models.Title{Text: dominanceTitle},
			XAxis:   &models.Axis{Title: &models.Title{Text: "state"}},
			YAxis:   &models.Axis{Title: &models.Title{Text: "times_dominated"}},
			BarMode: "relative",
			Height:  900,
			Width:   1650,
		},
	}

	parties := make([]string, 0)
	for _, row := range top {
		if !slices.Contains(parties, row.Party) {
			parties = append(parties, row.Party)
		}
	}

	unpaletted := 0
	for _, party := range parties {
		color := partyColor(party, unpaletted)
		if _, ok := PartyColors[party]; !ok {
			unpaletted++
		}
		states := make([]string, 0)
		counts := make([]int, 0)
		for _, row := range top {
			if row.Party == party {
				states = append(states, row.State)
				counts = append(counts, row.TimesDominated)
			}
		}
		fig.Data = append(fig.Data, models.Trace{
			Type:   "bar",
			Name:   party,
			X:      states,
			Y:      counts,
			Marker: &models.Marker{Color: color},
		})
	}
	return fig
}
