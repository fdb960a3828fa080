package insights

import (
	"bytes"
	"testing"

	"github.com/de-tools/route-trends/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_AbsentIsNotMounted(t *testing.T) {
	assert.Nil(t, Build(nil))
}

func TestBuild_Summary(t *testing.T) {
	p := Build(domain.Summary{
		DemandTrend:  "up",
		PriceTrend:   "down",
		PopularDays:  []string{"Mon", "Fri"},
		Observations: "Stable demand",
	})

	require.NotNil(t, p)
	assert.False(t, p.IsError())
	assert.Equal(t, &Panel{
		Title: "AI Insights",
		Lines: []Line{
			{Label: "Demand Trend", Value: "up"},
			{Label: "Price Trend", Value: "down"},
			{Label: "Popular Days", Value: "Mon, Fri"},
			{Label: "Observations", Value: "Stable demand"},
		},
	}, p)
}

func TestBuild_EmptyPopularDaysRendersEmptyLine(t *testing.T) {
	for name, days := range map[string][]string{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			p := Build(domain.Summary{DemandTrend: "stable", PopularDays: days})

			require.Len(t, p.Lines, 4)
			assert.Equal(t, Line{Label: "Popular Days", Value: ""}, p.Lines[2])

			var buf bytes.Buffer
			require.NoError(t, p.Render(&buf))
			assert.Contains(t, buf.String(), "Popular Days: \n")
		})
	}
}

func TestBuild_Failure(t *testing.T) {
	p := Build(domain.Failure{Message: "Gemini did not return valid JSON format."})

	require.NotNil(t, p)
	assert.True(t, p.IsError())
	assert.Equal(t, "Error", p.Title)
	assert.Equal(t, "Gemini did not return valid JSON format.", p.Error)
	assert.Empty(t, p.Lines)
}

func TestBuild_ExactlyOneBranch(t *testing.T) {
	values := []domain.Insights{
		domain.Summary{},
		domain.Summary{DemandTrend: "up", PopularDays: []string{"Sat"}},
		domain.Failure{},
		domain.Failure{Message: "boom"},
	}

	for _, v := range values {
		p := Build(v)
		require.NotNil(t, p)
		hasLines := len(p.Lines) > 0
		assert.NotEqual(t, hasLines, p.IsError(), "%#v", v)
		if p.IsError() {
			assert.Empty(t, p.Lines)
		} else {
			assert.Empty(t, p.Error)
		}
	}
}

func TestPanel_Render(t *testing.T) {
	tests := []struct {
		name     string
		insights domain.Insights
		expected string
	}{
		{
			name: "summary",
			insights: domain.Summary{
				DemandTrend:  "up",
				PriceTrend:   "down",
				PopularDays:  []string{"Mon", "Fri"},
				Observations: "Stable demand",
			},
			expected: "=== AI Insights ===\n" +
				"Demand Trend: up\n" +
				"Price Trend: down\n" +
				"Popular Days: Mon, Fri\n" +
				"Observations: Stable demand\n",
		},
		{
			name:     "failure",
			insights: domain.Failure{Message: "Analysis failed: network down"},
			expected: "=== Error ===\nAnalysis failed: network down\n",
		},
		{
			name:     "failure without message",
			insights: domain.Failure{},
			expected: "=== Error ===\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Build(tt.insights).Render(&buf))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}
