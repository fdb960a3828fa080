package domain

// Insights is either a Summary or a Failure. The set is closed: only types
// in this package implement it, so a type switch over both is exhaustive.
type Insights interface {
	isInsights()
}

// Summary is the narrative produced for a successful analysis.
type Summary struct {
	DemandTrend  string
	PriceTrend   string
	PopularDays  []string
	Observations string
}

// Failure carries a message suitable for display.
type Failure struct {
	Message string
}

func (Summary) isInsights() {}
func (Failure) isInsights() {}
