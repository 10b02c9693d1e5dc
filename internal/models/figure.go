package models

// Figure is a plotly.js figure: a list of traces plus a layout. The browser
// hands it straight to Plotly.react.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace covers the subset of plotly trace attributes the dashboard uses
type Trace struct {
	Type          string      `json:"type"`
	Name          string      `json:"name,omitempty"`
	Mode          string      `json:"mode,omitempty"`
	X             interface{} `json:"x,omitempty"`
	Y             interface{} `json:"y,omitempty"`
	Z             interface{} `json:"z,omitempty"`
	YAxis         string      `json:"yaxis,omitempty"`
	Line          *Line       `json:"line,omitempty"`
	Marker        *Marker     `json:"marker,omitempty"`
	Text          []string    `json:"text,omitempty"`
	HoverTemplate string      `json:"hovertemplate,omitempty"`
	CustomData    [][]string  `json:"customdata,omitempty"`
	ShowLegend    *bool       `json:"showlegend,omitempty"`
	LegendGroup   string      `json:"legendgroup,omitempty"`

	// choropleth
	GeoJSON      string      `json:"geojson,omitempty"`
	FeatureIDKey string      `json:"featureidkey,omitempty"`
	Locations    []int       `json:"locations,omitempty"`
	ColorScale   interface{} `json:"colorscale,omitempty"`
	ShowScale    *bool       `json:"showscale,omitempty"`
	ColorBar     *ColorBar   `json:"colorbar,omitempty"`

	// sunburst
	IDs          []string  `json:"ids,omitempty"`
	Labels       []string  `json:"labels,omitempty"`
	Parents      []string  `json:"parents,omitempty"`
	Values       []float64 `json:"values,omitempty"`
	BranchValues string    `json:"branchvalues,omitempty"`
}

// Line styles a scatter line
type Line struct {
	Color string `json:"color,omitempty"`
	Dash  string `json:"dash,omitempty"`
}

// Marker styles bars, markers and choropleth outlines
type Marker struct {
	Color  interface{} `json:"color,omitempty"`
	Colors []string    `json:"colors,omitempty"`
	Line   *Line       `json:"line,omitempty"`
}

// ColorBar titles a continuous color scale
type ColorBar struct {
	Title Title `json:"title"`
}

// Title is a plotly title object
type Title struct {
	Text string `json:"text"`
}

// Axis configures one cartesian axis
type Axis struct {
	Title      *Title `json:"title,omitempty"`
	Side       string `json:"side,omitempty"`
	Overlaying string `json:"overlaying,omitempty"`
	Type       string `json:"type,omitempty"`
}

// Geo configures the map projection of choropleth figures
type Geo struct {
	FitBounds string `json:"fitbounds,omitempty"`
	Visible   bool   `json:"visible"`
}

// Margin is the plot margin in pixels
type Margin struct {
	R int `json:"r"`
	T int `json:"t"`
	L int `json:"l"`
	B int `json:"b"`
}

// Font sets the global font size
type Font struct {
	Size int `json:"size,omitempty"`
}

// Layout covers the subset of plotly layout attributes the dashboard uses
type Layout struct {
	Title     Title   `json:"title"`
	XAxis     *Axis   `json:"xaxis,omitempty"`
	YAxis     *Axis   `json:"yaxis,omitempty"`
	YAxis2    *Axis   `json:"yaxis2,omitempty"`
	Geo       *Geo    `json:"geo,omitempty"`
	Margin    *Margin `json:"margin,omitempty"`
	Font      *Font   `json:"font,omitempty"`
	HoverMode string  `json:"hovermode,omitempty"`
	BarMode   string  `json:"barmode,omitempty"`
	Height    int     `json:"height,omitempty"`
	Width     int     `json:"width,omitempty"`
}
