package datafile

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissingSource(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingSource))
}

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"events.txt", "events.txt.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			w, err := Create(path)
			require.NoError(t, err)
			_, err = io.WriteString(w, "hello\nworld\n")
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := Open(path)
			require.NoError(t, err)
			defer r.Close()

			data, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, "hello\nworld\n", string(data))
		})
	}
}

func TestBaseExt(t *testing.T) {
	assert.Equal(t, ".csv", BaseExt("airports.csv"))
	assert.Equal(t, ".csv", BaseExt("airports.CSV.zst"))
	assert.Equal(t, ".json", BaseExt("/data/airports.json"))
	assert.True(t, Compressed("x.ZST"))
	assert.False(t, Compressed("x.json"))
}

func TestRecordError(t *testing.T) {
	cause := fmt.Errorf("bad latitude")
	err := fmt.Errorf("loading: %w", &RecordError{Source: "events.txt", Line: 7, Err: cause})

	assert.True(t, errors.Is(err, ErrMalformedRecord))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "events.txt:7")

	var recErr *RecordError
	require.True(t, errors.As(err, &recErr))
	assert.Equal(t, 7, recErr.Line)
}
