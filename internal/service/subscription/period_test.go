// internal/service/subscription/period_test.go
package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestAddMonthsClamped(t *testing.T) {
	cases := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{"mid-month", date(2026, time.March, 15), 1, date(2026, time.April, 15)},
		{"jan 31 clamps to feb 28", date(2026, time.January, 31), 1, date(2026, time.February, 28)},
		{"jan 31 leap year clamps to feb 29", date(2028, time.January, 31), 1, date(2028, time.February, 29)},
		{"march 31 clamps to april 30", date(2026, time.March, 31), 1, date(2026, time.April, 30)},
		{"multiple months", date(2026, time.January, 10), 3, date(2026, time.April, 10)},
		{"year rollover", date(2026, time.November, 30), 3, date(2027, time.February, 28)},
		{"twelve months", date(2026, time.August, 30), 12, date(2027, time.August, 30)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, addMonthsClamped(tc.start, tc.months))
		})
	}
}

func TestAddMonthsClampedPreservesClock(t *testing.T) {
	start := time.Date(2026, time.January, 31, 23, 59, 58, 123, time.UTC)
	got := addMonthsClamped(start, 1)

	assert.Equal(t, 23, got.Hour())
	assert.Equal(t, 59, got.Minute())
	assert.Equal(t, 58, got.Second())
	assert.Equal(t, 123, got.Nanosecond())
}
