package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationFallsBackToDefault(t *testing.T) {
	assert.Equal(t, DefaultTimezone, Location("Not/AZone").String())
	assert.Equal(t, "UTC", Location("UTC").String())
}

func TestParseDateTime(t *testing.T) {
	loc := Location(DefaultTimezone)

	naive, err := ParseDateTime("2025-09-25T11:00:00", loc)
	require.NoError(t, err)
	assert.Equal(t, 11, naive.Hour())
	assert.Equal(t, loc, naive.Location())

	withZone, err := ParseDateTime("2025-09-25T14:00:00Z", loc)
	require.NoError(t, err)
	assert.True(t, naive.Equal(withZone))

	_, err = ParseDateTime("25/09/2025", loc)
	assert.Error(t, err)
}

func TestStartOfDayAndMonth(t *testing.T) {
	at := time.Date(2025, 9, 25, 15, 42, 10, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 9, 25, 0, 0, 0, 0, time.UTC), StartOfDay(at))
	assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(at))
}

func TestAtClock(t *testing.T) {
	day := time.Date(2025, 9, 25, 0, 0, 0, 0, time.UTC)

	got, err := AtClock(day, "08:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 25, 8, 30, 0, 0, time.UTC), got)

	_, err = AtClock(day, "8h30")
	assert.Error(t, err)
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	c := FixedClock{At: at}
	assert.Equal(t, at, c.Now())
	assert.Equal(t, time.UTC, c.Location())
}
