package services

import (
	"fmt"
	"image/color"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Sheet names of the exported workbook
const (
	SheetDominance     = "Dominance"
	SheetRepeatWinners = "RepeatWinners"
	SheetHistory       = "History"
	SheetTurnoutTop    = "TurnoutTop"
)

// ExportService writes the precomputed aggregates to files
type ExportService struct {
	data   *Dataset
	logger *zap.Logger
}

// NewExportService creates a new ExportService instance
func NewExportService(data *Dataset, logger *zap.Logger) *ExportService {
	return &ExportService{
		data:   data,
		logger: logger.Named("export"),
	}
}

// WriteWorkbook writes one sheet per aggregate table as XLSX
func (s *ExportService) WriteWorkbook(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), SheetDominance)
	for _, sheet := range []string{SheetRepeatWinners, SheetHistory, SheetTurnoutTop} {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("error creating sheet %s: %w", sheet, err)
		}
	}

	dominance := [][]interface{}{{"state", "party", "times_dominated"}}
	for _, row := range s.data.Dominance {
		dominance = append(dominance, []interface{}{row.State, row.Party, row.TimesDominated})
	}

	winners := [][]interface{}{{"party", "candidate_name", "wins"}}
	for _, row := range s.data.RepeatWinners {
		winners = append(winners, []interface{}{row.Party, row.CandidateName, row.Wins})
	}

	history := [][]interface{}{{"year", "party", "seats", "total_votes", "avg_turnout"}}
	for _, row := range s.data.History {
		history = append(history, []interface{}{row.Year, row.Party, row.Seats, row.TotalVotes, row.AvgTurnout})
	}

	turnout := [][]interface{}{{"state", "year", "Pc_name", "party", "Turnout"}}
	for _, row := range s.data.TurnoutTop {
		turnout = append(turnout, []interface{}{row.State, *row.Year, row.PcName, row.Party, row.Turnout})
	}

	for sheet, rows := range map[string][][]interface{}{
		SheetDominance:     dominance,
		SheetRepeatWinners: winners,
		SheetHistory:       history,
		SheetTurnoutTop:    turnout,
	} {
		if err := writeRows(f, sheet, rows); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	s.logger.Debug("workbook written",
		zap.Int("dominance_rows", len(dominance)-1),
		zap.Int("history_rows", len(history)-1),
	)
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("error writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// WriteDominancePNG renders the dominance bar chart as a PNG image
func (s *ExportService) WriteDominancePNG(w io.Writer) error {
	top := s.data.TopDominance

	p := plot.New()
	p.Title.Text = dominanceTitle
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Y.Label.Text = "times_dominated"

	values := make(plotter.Values, len(top))
	labels := make([]string, len(top))
	for i, row := range top {
		values[i] = float64(row.TimesDominated)
		labels[i] = fmt.Sprintf("%s (%s)", row.State, row.Party)
	}

	if len(top) > 0 {
		bars, err := plotter.NewBarChart(values, vg.Points(20))
		if err != nil {
			return fmt.Errorf("error creating bar chart: %w", err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = color.RGBA{R: 0xFF, G: 0x99, B: 0x33, A: 0xFF}
		p.Add(bars)
		p.NominalX(labels...)
		p.X.Tick.Label.Rotation = 1.2
	}

	writer, err := p.WriterTo(16*vg.Inch, 9*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("error rendering chart: %w", err)
	}
	if _, err := writer.WriteTo(w); err != nil {
		return fmt.Errorf("error writing chart: %w", err)
	}
	return nil
}
