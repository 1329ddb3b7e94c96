package wikidata_test

import (
	"testing"
	"time"

	"github.com/gamedex/gdb/pkg/wikidata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		precision int
		wantErr   bool
		year      int
		month     int
		day       int
	}{
		{
			name:      "day precision",
			input:     "+1998-11-23T00:00:00Z",
			precision: wikidata.PrecisionDay,
			year:      1998, month: 11, day: 23,
		},
		{
			name:      "month precision drops day",
			input:     "+1998-11-00T00:00:00Z",
			precision: wikidata.PrecisionMonth,
			year:      1998, month: 11, day: 0,
		},
		{
			name:      "year precision drops month and day",
			input:     "+1998-00-00T00:00:00Z",
			precision: wikidata.PrecisionYear,
			year:      1998, month: 0, day: 0,
		},
		{
			name:      "five digit year",
			input:     "+12015-01-01T00:00:00Z",
			precision: wikidata.PrecisionYear,
			year:      12015,
		},
		{
			name:      "negative year rejected",
			input:     "-0500-01-01T00:00:00Z",
			precision: wikidata.PrecisionYear,
			wantErr:   true,
		},
		{
			name:      "malformed rejected",
			input:     "1998-11-23",
			precision: wikidata.PrecisionDay,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tv, err := wikidata.ParseTime(tt.input, tt.precision)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.year, tv.Year)
			assert.Equal(t, tt.month, tv.Month)
			assert.Equal(t, tt.day, tv.Day)
		})
	}
}

func TestDateCategory(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		prec     int
		category string
		human    string
	}{
		{
			name:  "full date",
			input: "+1998-11-23T00:00:00Z", prec: wikidata.PrecisionDay,
			category: "full", human: "1998-11-23",
		},
		{
			name:  "year and month",
			input: "+1998-11-00T00:00:00Z", prec: wikidata.PrecisionMonth,
			category: "year_month", human: "1998-11",
		},
		{
			name:  "year only",
			input: "+1998-00-00T00:00:00Z", prec: wikidata.PrecisionYear,
			category: "year", human: "1998",
		},
		{
			name: "day precision without asserted day degrades",
			// Some upstream values claim day precision but carry a
			// zero day; classification follows the data.
			input: "+2004-03-00T00:00:00Z", prec: wikidata.PrecisionDay,
			category: "year_month", human: "2004-03",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tv, err := wikidata.ParseTime(tt.input, tt.prec)
			require.NoError(t, err)
			assert.Equal(t, tt.category, tv.Category().String())
			assert.Equal(t, tt.human, tv.Human())
		})
	}
}

func TestTimeValueTime(t *testing.T) {
	tv, err := wikidata.ParseTime(
		"+1998-00-00T00:00:00Z", wikidata.PrecisionYear)
	require.NoError(t, err)

	// Unasserted month and day substitute January 1.
	want := time.Date(1998, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, tv.Time())
}
