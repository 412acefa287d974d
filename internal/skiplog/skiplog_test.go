package skiplog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txnetl/internal/records"
)

func TestWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "users_rejected.csv")
	cols := []string{"user_id", "signup_date", "country"}

	w, err := New(path, cols)
	require.NoError(t, err)

	w.Add("missing_country", records.Row{"user_id": int64(4), "signup_date": "2024-01-13", "country": nil})
	w.Add("invalid_user_id", records.Row{"user_id": "x7", "signup_date": "2024-01-14", "country": "US"})
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	lines, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, []string{"reason", "user_id", "signup_date", "country"}, lines[0])
	assert.Equal(t, []string{"missing_country", "4", "2024-01-13", ""}, lines[1])
	assert.Equal(t, []string{"invalid_user_id", "x7", "2024-01-14", "US"}, lines[2])
}

func TestNewCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c.csv")

	w, err := New(path, []string{"user_id"})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
