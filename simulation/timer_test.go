package simulation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/njchilds90/gobamm/simulation"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0.005, "0.005 seconds"},
		{0.0019, "0.0019 seconds"},
		{4.256, "4.26 seconds"},
		{59, "59 seconds"},
		{61, "1 minute, 1 second"},
		{120, "2 minutes, 0 seconds"},
		{3600 + 2*60 + 3, "1 hour, 2 minutes, 3 seconds"},
		{604800 + 3600 + 1, "1 week, 0 days, 1 hour, 0 minutes, 1 second"},
		{2*604800 + 86400, "2 weeks, 1 day, 0 hours, 0 minutes, 0 seconds"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, simulation.Format(tt.seconds), "Format(%v)", tt.seconds)
	}
}

func TestTimer_Time(t *testing.T) {
	timer := simulation.NewTimer()
	time.Sleep(2 * time.Millisecond)
	first := timer.Time()
	assert.GreaterOrEqual(t, first, 2*time.Millisecond)

	timer.Reset()
	assert.Less(t, timer.Time(), first+time.Second)
}
