package airports

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unklstewy/ads-flights/pkg/datafile"
)

func TestReadJSON(t *testing.T) {
	input := `[
		{"identifier": "KSEA", "latitude": 47.4502, "longitude": -122.3088, "elevation": 433},
		{"identifier": "KBFI", "latitude": 47.53, "longitude": -122.302, "elevation": 21}
	]`

	got, err := ReadJSON(strings.NewReader(input), "airports.json")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "KSEA", got[0].Identifier)
	assert.Equal(t, 433, got[0].Elevation)
	assert.True(t, got[0].Location.Valid())
	assert.InDelta(t, -122.302, got[1].Location.Longitude, 1e-9)
}

func TestReadJSONMalformed(t *testing.T) {
	tests := map[string]string{
		"not an array":     `{"identifier": "KSEA"}`,
		"missing location": `[{"identifier": "KSEA", "elevation": 433}]`,
		"missing id":       `[{"latitude": 1, "longitude": 2}]`,
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(input), "airports.json")
			assert.True(t, errors.Is(err, datafile.ErrMalformedRecord), "got %v", err)
		})
	}
}

func TestReadCSV(t *testing.T) {
	input := "id,ident,type,name,latitude_deg,longitude_deg,elevation_ft\n" +
		"1,KSEA,large_airport,Seattle Tacoma,47.4502,-122.3088,433\n" +
		"2,X01,heliport,Somewhere,10.5,20.5,\n"

	got, err := ReadCSV(strings.NewReader(input), "airports.csv")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "KSEA", got[0].Identifier)
	assert.Equal(t, 433, got[0].Elevation)
	assert.Equal(t, 0, got[1].Elevation)
}

func TestReadCSVMalformed(t *testing.T) {
	t.Run("missing column", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("ident,latitude_deg\nKSEA,47\n"), "airports.csv")
		assert.True(t, errors.Is(err, datafile.ErrMalformedRecord))
	})

	t.Run("bad latitude", func(t *testing.T) {
		input := "ident,latitude_deg,longitude_deg,elevation_ft\nKSEA,north,-122,433\n"
		_, err := ReadCSV(strings.NewReader(input), "airports.csv")
		require.True(t, errors.Is(err, datafile.ErrMalformedRecord))

		var recErr *datafile.RecordError
		require.True(t, errors.As(err, &recErr))
		assert.Equal(t, 2, recErr.Line)
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(err, datafile.ErrMissingSource))

	jsonPath := filepath.Join(dir, "airports.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"identifier":"A","latitude":1,"longitude":2,"elevation":3}]`), 0644))
	got, err := Load(jsonPath)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	csvPath := filepath.Join(dir, "airports.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("ident,latitude_deg,longitude_deg,elevation_ft\nB,1,2,3\nC,4,5,6\n"), 0644))
	got, err = Load(csvPath)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
