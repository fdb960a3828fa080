package api

// AnalyzeRequest is the body posted to the analysis service.
type AnalyzeRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type DataPoint struct {
	Date     string  `json:"date"`
	Bookings float64 `json:"bookings"`
	Price    float64 `json:"price"`
}

// Insights is the wire shape of both variants. The service marks a failure
// only by the presence of Error.
type Insights struct {
	DemandTrend  string   `json:"demand_trend"`
	PriceTrend   string   `json:"price_trend"`
	PopularDays  []string `json:"popular_days"`
	Observations string   `json:"observations"`
	Error        *string  `json:"error,omitempty"`
}

// AnalyzeResponse uses pointers so that a missing key can be told apart
// from an empty value.
type AnalyzeResponse struct {
	Data     *[]DataPoint `json:"data"`
	Insights *Insights    `json:"insights"`
}
