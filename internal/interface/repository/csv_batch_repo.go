package repository

import (
	"context"
	"fmt"
	"strings"

	"flightlink-service/internal/domain/entity"
)

// Batch input columns
const (
	batchColID = iota
	batchColOrigin
	batchColDestination
	batchColDepart
	batchColReturn
	batchColTravelers
	batchColCabin = batchColTravelers + entity.TravelerGroups
)

// CSVBatchRepository reads travel requests from a CSV file with a header row
type CSVBatchRepository struct {
	path string
}

// NewCSVBatchRepository creates a new CSV batch repository
func NewCSVBatchRepository(path string) *CSVBatchRepository {
	return &CSVBatchRepository{path: path}
}

// Rows returns every non-blank row after the header
func (r *CSVBatchRepository) Rows(ctx context.Context) ([]entity.RawRequest, error) {
	rows, err := readCSV(r.path)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	if len(rows) > 0 {
		rows = rows[1:]
	}
	return ParseBatchRows(rows), nil
}

// ParseBatchRows maps batch cells to raw requests. Short rows are padded
// with empty cells and fully blank rows are dropped.
func ParseBatchRows(rows [][]string) []entity.RawRequest {
	out := make([]entity.RawRequest, 0, len(rows))
	for _, row := range rows {
		if blankRow(row) {
			continue
		}
		cell := func(i int) string {
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}

		travelers := make([]string, entity.TravelerGroups)
		for i := range travelers {
			travelers[i] = cell(batchColTravelers + i)
		}

		out = append(out, entity.RawRequest{
			SourceID:    cell(batchColID),
			Origin:      cell(batchColOrigin),
			Destination: cell(batchColDestination),
			DepartDate:  cell(batchColDepart),
			ReturnDate:  cell(batchColReturn),
			Travelers:   strings.Join(travelers, ","),
			CabinClass:  cell(batchColCabin),
		})
	}
	return out
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
