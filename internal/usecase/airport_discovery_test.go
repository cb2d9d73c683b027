package usecase

import (
	"context"
	"errors"
	"testing"

	"flightlink-service/pkg/logger"

	"github.com/stretchr/testify/require"
)

type textIndex struct {
	text string
	err  error
}

func (i textIndex) AirportTableText(ctx context.Context) (string, error) {
	return i.text, i.err
}

type savedCodes struct {
	codes []string
}

func (s *savedCodes) SaveCodes(ctx context.Context, codes []string) error {
	s.codes = codes
	return nil
}

func TestAirportDiscoveryRefresh(t *testing.T) {
	saved := &savedCodes{}
	d := NewAirportDiscovery(textIndex{
		text: "CityAirportIATA codeA CoruñaA Coruña AirportLCGAalborgAalborg AirportAALAbu DhabiAbu Dhabi InternationalAUH",
	}, saved, logger.NewNop())

	codes, err := d.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"LCG", "AAL", "AUH"}, codes)
	require.Equal(t, codes, saved.codes)
}

func TestAirportDiscoveryErrors(t *testing.T) {
	saved := &savedCodes{}

	_, err := NewAirportDiscovery(textIndex{err: errors.New("timeout")}, saved, logger.NewNop()).Refresh(context.Background())
	require.Error(t, err)

	_, err = NewAirportDiscovery(textIndex{text: "no codes here"}, saved, logger.NewNop()).Refresh(context.Background())
	require.Error(t, err)
	require.Nil(t, saved.codes)
}
