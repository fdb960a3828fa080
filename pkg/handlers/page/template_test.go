package page

import (
	"io"
	"testing"

	"github.com/de-tools/route-trends/pkg/models/domain"
	"github.com/de-tools/route-trends/pkg/views/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoverColumns_FollowPlotArea(t *testing.T) {
	c, err := timeseries.Build([]domain.DataPoint{
		{Date: "2024-01-01", Bookings: 120, Price: 199.5},
		{Date: "2024-01-02", Bookings: 95, Price: 210},
	}, timeseries.Options{Width: 1000, Height: 500})
	require.NoError(t, err)

	columns := hoverColumns(c, timeseries.PlotArea{Left: 100, Top: 50, Right: 900, Bottom: 450})

	require.Len(t, columns, 2)
	tests := []struct {
		name   string
		column hoverColumn
		left   string
	}{
		{name: "first point", column: columns[0], left: "10.00"},
		{name: "second point", column: columns[1], left: "50.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.left, tt.column.Left)
			assert.Equal(t, "40.00", tt.column.Width)
			assert.Equal(t, "10.00", tt.column.Top)
			assert.Equal(t, "80.00", tt.column.Height)
		})
	}
	assert.Contains(t, columns[0].Text, "2024-01-01")
}

func TestHoverColumns_MatchRenderedLayout(t *testing.T) {
	c, err := timeseries.Build([]domain.DataPoint{
		{Date: "2024-01-01", Bookings: 120, Price: 199.5},
	}, timeseries.Options{Width: 800, Height: 300})
	require.NoError(t, err)

	plot, err := c.RenderLayout(io.Discard, timeseries.FormatSVG)
	require.NoError(t, err)

	columns := hoverColumns(c, plot)
	require.Len(t, columns, 1)
	assert.NotEqual(t, "0.00", columns[0].Left)
	assert.NotEqual(t, "100.00", columns[0].Width)
}

func TestHoverColumns_EmptyPlotArea(t *testing.T) {
	c, err := timeseries.Build([]domain.DataPoint{{Date: "2024-01-01"}}, timeseries.Options{})
	require.NoError(t, err)

	assert.Nil(t, hoverColumns(c, timeseries.PlotArea{}))
}
