package services

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"election-dashboard/internal/models"
)

// UnknownParty labels rows whose party cell is empty
const UnknownParty = "Unknown"

// Column names of the results CSV
const (
	colState     = "state"
	colYear      = "year"
	colPcName    = "Pc_name"
	colCandidate = "candidate_name"
	colParty     = "party"
	colVotes     = "votes"
	colElectors  = "electors"
	colTurnout   = "Turnout"
	colMargin    = "margin%"
)

var requiredColumns = []string{
	colState, colYear, colPcName, colCandidate, colParty,
	colVotes, colElectors, colTurnout, colMargin,
}

// ResultsService loads and cleans the election results dataset
type ResultsService struct {
	aliases map[string]string
	logger  *zap.Logger
}

// NewResultsService creates a new ResultsService instance
func NewResultsService(aliases map[string]string, logger *zap.Logger) *ResultsService {
	return &ResultsService{
		aliases: aliases,
		logger:  logger.Named("results"),
	}
}

// LoadFile reads and cleans the results CSV at path
func (s *ResultsService) LoadFile(path string) ([]models.ResultRecord, models.LoadStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, models.LoadStats{}, fmt.Errorf("error opening results CSV file: %w", err)
	}
	defer file.Close()

	records, stats, err := LoadResults(bufio.NewReader(file), s.aliases)
	if err != nil {
		return nil, stats, err
	}

	s.logger.Info("results loaded",
		zap.String("path", path),
		zap.Int("rows_read", stats.RowsRead),
		zap.Int("rows_dropped", stats.RowsDropped),
		zap.Int("rows_kept", stats.RowsKept),
		zap.Int("rows_without_year", stats.RowsWithoutYear),
	)
	return records, stats, nil
}

// readRows reads the raw CSV rows. A leading byte order mark is stripped and
// ragged rows are padded or cut to the width of the header.
func readRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading results CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("error reading results CSV: no header row")
	}

	width := len(rows[0])
	for i, row := range rows[1:] {
		switch {
		case len(row) < width:
			rows[i+1] = append(row, make([]string, width-len(row))...)
		case len(row) > width:
			rows[i+1] = row[:width]
		}
	}
	return rows, nil
}

// LoadResults reads the results CSV into a dataframe and applies the cleaning rules:
// party names are title-cased and aliased, numeric columns are coerced, rows
// without turnout, votes or electors are dropped and turnout is recomputed
// from votes and electors.
func LoadResults(r io.Reader, aliases map[string]string) ([]models.ResultRecord, models.LoadStats, error) {
	var stats models.LoadStats

	rows, err := readRows(r)
	if err != nil {
		return nil, stats, err
	}

	df := dataframe.LoadRecords(rows,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, stats, fmt.Errorf("error reading results CSV: %w", df.Err)
	}

	columns, err := selectColumns(df)
	if err != nil {
		return nil, stats, err
	}

	stats.RowsRead = df.Nrow()
	records := make([]models.ResultRecord, 0, stats.RowsRead)

	for i := 0; i < stats.RowsRead; i++ {
		rawTurnout := columns[colTurnout][i]
		if _, ok := parsePercent(rawTurnout); !ok {
			stats.RowsDropped++
			continue
		}
		votes, ok := parseCount(columns[colVotes][i])
		if !ok {
			stats.RowsDropped++
			continue
		}
		electors, ok := parseCount(columns[colElectors][i])
		if !ok || electors == 0 {
			stats.RowsDropped++
			continue
		}

		record := models.ResultRecord{
			State:         strings.TrimSpace(cellValue(columns[colState][i])),
			PcName:        NormalizeName(columns[colPcName][i]),
			JoinKey:       JoinKey(columns[colPcName][i]),
			CandidateName: strings.TrimSpace(cellValue(columns[colCandidate][i])),
			Party:         cleanParty(columns[colParty][i], aliases),
			Votes:         votes,
			Electors:      electors,
			Turnout:       votes / electors * 100,
		}

		if year, ok := parseYear(columns[colYear][i]); ok {
			record.Year = &year
		} else {
			stats.RowsWithoutYear++
		}

		if margin, ok := parsePercent(columns[colMargin][i]); ok {
			record.MarginPct = &margin
		}
		record.MarginBucket = MarginBucket(record.MarginPct)

		records = append(records, record)
	}

	stats.RowsKept = len(records)
	return records, stats, nil
}

// selectColumns returns the raw string values of every required column,
// matching header names after trimming surrounding whitespace
func selectColumns(df dataframe.DataFrame) (map[string][]string, error) {
	byName := make(map[string]string, df.Ncol())
	for _, name := range df.Names() {
		byName[strings.TrimSpace(name)] = name
	}

	columns := make(map[string][]string, len(requiredColumns))
	for _, col := range requiredColumns {
		name, ok := byName[col]
		if !ok {
			return nil, fmt.Errorf("results CSV is missing column %q", col)
		}
		columns[col] = df.Col(name).Records()
	}
	return columns, nil
}

func cellValue(s string) string {
	if isMissing(s) {
		return ""
	}
	return s
}
