package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListingText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "en dash", in: "10:00–12:00", want: "10:00-12:00"},
		{name: "em dash", in: "ATL—DXB", want: "ATL-DXB"},
		{name: "whitespace", in: "  Delta  Air\n Lines ", want: "Delta Air Lines"},
		{name: "empty", in: "   ", want: ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, ListingText(c.in))
		})
	}
}

func TestExtractIATACodes(t *testing.T) {
	text := "CityAirportIATA codeA CoruñaA Coruña AirportLCGAalborgAalborg AirportAALAarhusAarhus AirportAARLCG"
	require.Equal(t, []string{"IAT", "LCG", "AAL", "AAR"}, ExtractIATACodes(text))
}

func TestSplitList(t *testing.T) {
	require.Equal(t, []string{"hotel", "cars"}, SplitList(" hotel, ,cars "))
	require.Nil(t, SplitList(""))
}
