package api

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPeriodEncoding(t *testing.T) {
	cases := []struct {
		name   string
		period Period
		want   string
	}{
		{"current year", CurrentYear(), "current-year"},
		{"zero value", Period{}, "current-year"},
		{"year", ForYear(2024), "2024"},
		{"month", ForMonth(2025, 3), "2025-03"},
		{"month two digit", ForMonth(2025, 11), "2025-11"},
		{"last months", LastMonths(6), "last-6-months"},
		{"last single month", LastMonths(1), "last-1-months"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.period.Encode())
			require.Equal(t, tc.want, tc.period.String())
		})
	}
}
