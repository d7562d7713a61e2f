package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	loc, err := Load("America/Chicago")
	require.NoError(t, err)

	parsed, err := Parse("03/14/2019", "%m/%d/%Y", loc)
	require.NoError(t, err)
	require.Equal(t, time.Date(2019, 3, 14, 0, 0, 0, 0, loc), parsed)
	require.Equal(t, "2019-03-14", Normalize(parsed))
}

func TestParseWithTime(t *testing.T) {
	loc, err := Load("America/New_York")
	require.NoError(t, err)

	parsed, err := Parse("6/8/2015 2:00 PM", "%-m/%-d/%Y %-I:%M %p", loc)
	require.NoError(t, err)
	require.Equal(t, time.Date(2015, 6, 8, 14, 0, 0, 0, loc), parsed)
}

func TestBadFormat(t *testing.T) {
	loc, err := Load("America/Chicago")
	require.NoError(t, err)

	_, err = Parse("03/14/2019", "%Q", loc)
	require.Error(t, err)
}

func TestBadLocation(t *testing.T) {
	_, err := Load("America/Gotham")
	require.Error(t, err)
}
