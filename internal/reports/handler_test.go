package reports

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMovementWindowParams(t *testing.T) {
	// No params means an open window on both sides.
	from, to, err := movementWindowParams(httptest.NewRequest(http.MethodGet, "/reports/stock-movements", nil))
	require.NoError(t, err)
	require.True(t, from.IsZero())
	require.True(t, to.IsZero())

	req := httptest.NewRequest(http.MethodGet, "/reports/stock-movements?startDate=2026-03-01&endDate=2026-03-02", nil)
	from, to, err = movementWindowParams(req)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), from)
	require.Equal(t, time.Date(2026, 3, 2, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC), to)

	// One-sided windows stay open on the other side.
	req = httptest.NewRequest(http.MethodGet, "/reports/stock-movements?startDate=2026-03-01", nil)
	from, to, err = movementWindowParams(req)
	require.NoError(t, err)
	require.False(t, from.IsZero())
	require.True(t, to.IsZero())

	_, _, err = movementWindowParams(httptest.NewRequest(http.MethodGet, "/reports/stock-movements?startDate=bogus", nil))
	require.Error(t, err)
}

func TestNullTime(t *testing.T) {
	require.Nil(t, nullTime(time.Time{}))

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	got := nullTime(ts)
	require.NotNil(t, got)
	require.Equal(t, ts, *got)
}
