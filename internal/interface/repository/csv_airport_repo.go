package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"flightlink-service/internal/domain/entity"
)

// CSVAirportRepository reads and writes the IATA reference file, one code per line
type CSVAirportRepository struct {
	path string
}

// NewCSVAirportRepository creates a new CSV airport repository
func NewCSVAirportRepository(path string) *CSVAirportRepository {
	return &CSVAirportRepository{path: path}
}

// LoadCodes reads the first column of every line
func (r *CSVAirportRepository) LoadCodes(ctx context.Context) (entity.AirportSet, error) {
	rows, err := readCSV(r.path)
	if err != nil {
		return nil, fmt.Errorf("read airport codes: %w", err)
	}
	codes := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 {
			codes = append(codes, row[0])
		}
	}
	return entity.NewAirportSet(codes), nil
}

// SaveCodes replaces the file with codes
func (r *CSVAirportRepository) SaveCodes(ctx context.Context, codes []string) error {
	if len(codes) == 0 {
		return fmt.Errorf("no airport codes to save")
	}

	tmp := r.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	for _, code := range codes {
		if err := w.Write([]string{code}); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}
