package view

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTimeframe_DateRange(t *testing.T) {
	now := time.Date(2026, 3, 12, 15, 30, 0, 0, time.UTC) // Thursday

	tests := []struct {
		tf        Timeframe
		wantStart time.Time
		wantEnd   time.Time
	}{
		{TimeframeToday, date(2026, 3, 12), date(2026, 3, 12)},
		{TimeframeThisWeek, date(2026, 3, 9), date(2026, 3, 12)},
		{TimeframeThisMonth, date(2026, 3, 1), date(2026, 3, 12)},
		{TimeframeLastMonth, date(2026, 2, 1), date(2026, 2, 28)},
		{TimeframeThisYear, date(2026, 1, 1), date(2026, 3, 12)},
	}

	for _, tt := range tests {
		t.Run(tt.tf.String(), func(t *testing.T) {
			start, end := tt.tf.DateRange(now)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestTimeframe_WeekStartsMonday(t *testing.T) {
	sunday := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	start, _ := TimeframeThisWeek.DateRange(sunday)
	assert.Equal(t, date(2026, 3, 9), start)
}

func TestTimeframeSelectedMsg_Filter(t *testing.T) {
	all := TimeframeSelectedMsg{All: true}.Filter()
	assert.Nil(t, all.DateFrom)
	assert.Nil(t, all.DateTo)

	f := TimeframeSelectedMsg{Start: date(2026, 1, 1), End: date(2026, 1, 31)}.Filter()
	require.NotNil(t, f.DateFrom)
	require.NotNil(t, f.DateTo)
	assert.Equal(t, date(2026, 1, 31), *f.DateTo)
}

func TestParseCustomRange(t *testing.T) {
	start, end, err := parseCustomRange(" 2026-01-01", "2026-01-31 ")
	require.NoError(t, err)
	assert.Equal(t, date(2026, 1, 1), start)
	assert.Equal(t, date(2026, 1, 31), end)

	_, _, err = parseCustomRange("2026-02-01", "2026-01-01")
	assert.EqualError(t, err, "end date is before start date")

	_, _, err = parseCustomRange("01.02.2026", "2026-01-01")
	assert.EqualError(t, err, "invalid start date (YYYY-MM-DD)")
}

func TestTimeframePicker_SelectAll(t *testing.T) {
	p := NewTimeframePicker(TimeframeAll)

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(TimeframeSelectedMsg)
	require.True(t, ok)
	assert.True(t, msg.All)
	assert.Equal(t, "All Time", msg.Label)
	assert.True(t, p.IsSelecting())
}
