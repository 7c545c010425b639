package timespan_test

import (
	"testing"
	"time"

	"github.com/lattice-sync/lattice/timespan"
	"github.com/stretchr/testify/assert"
)

func TestTimeSpan(t *testing.T) {
	a := timespan.New(5 * time.Second)
	b := timespan.New(3 * time.Second)

	assert.Equal(t, 8*time.Second, a.Add(b).Duration())
	assert.Equal(t, 2*time.Second, a.Sub(b).Duration())
	assert.Equal(t, 10*time.Second, a.Mul(2).Duration())
	assert.Equal(t, 2500*time.Millisecond, a.Div(2).Duration())
	assert.True(t, timespan.Zero.IsZero())
	assert.False(t, a.IsZero())
	assert.True(t, a.Equal(timespan.New(5*time.Second)))
	assert.Equal(t, -1, b.Compare(a))
	assert.Equal(t, 1, a.Compare(b))
	assert.Equal(t, 0, a.Compare(timespan.New(5*time.Second)))
}

func TestToEndDateAndStartDate(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	span := timespan.New(time.Hour)

	assert.Equal(t, from.Add(time.Hour), span.ToEndDate(from))
	assert.Equal(t, from.Add(-time.Hour), span.ToStartDate(from))
}
