package sheets

import (
	"context"
	"fmt"

	"flightlink-service/internal/domain/entity"
	"flightlink-service/internal/interface/repository"
	"flightlink-service/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// BatchSource reads travel requests from a Google Sheets range
type BatchSource struct {
	service       *sheets.Service
	spreadsheetID string
	readRange     string
	logger        logger.Logger
}

// NewBatchSource creates a new Sheets batch source
func NewBatchSource(ctx context.Context, tokenSource oauth2.TokenSource, spreadsheetID, readRange string, logger logger.Logger) (*BatchSource, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	service, err := sheets.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &BatchSource{
		service:       service,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
		logger:        logger,
	}, nil
}

// Rows fetches the configured range. The range is expected to start below
// the header row.
func (s *BatchSource) Rows(ctx context.Context) ([]entity.RawRequest, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		s.logger.Error("Failed to read spreadsheet", "range", s.readRange, "error", err)
		return nil, fmt.Errorf("read sheet range %s: %w", s.readRange, err)
	}

	rows := CellsToRows(resp.Values)
	s.logger.Info("Batch rows fetched from sheet", "range", s.readRange, "rows", len(rows))
	return repository.ParseBatchRows(rows), nil
}

// CellsToRows converts API cell values to strings
func CellsToRows(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		rows[i] = make([]string, len(row))
		for j, v := range row {
			if v == nil {
				continue
			}
			rows[i][j] = fmt.Sprint(v)
		}
	}
	return rows
}
