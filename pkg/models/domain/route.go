package domain

import "fmt"

// Field names one of the four inputs of a route query.
type Field string

const (
	FieldOrigin      Field = "origin"
	FieldDestination Field = "destination"
	FieldStartDate   Field = "start_date"
	FieldEndDate     Field = "end_date"
)

// Fields lists the query inputs in form order.
var Fields = []Field{FieldOrigin, FieldDestination, FieldStartDate, FieldEndDate}

// RouteQuery is the form state submitted for analysis. Dates are ISO-8601
// date strings or empty; nothing is validated client side.
type RouteQuery struct {
	Origin      string
	Destination string
	StartDate   string
	EndDate     string
}

// Get returns the value held for field.
func (q RouteQuery) Get(field Field) (string, error) {
	switch field {
	case FieldOrigin:
		return q.Origin, nil
	case FieldDestination:
		return q.Destination, nil
	case FieldStartDate:
		return q.StartDate, nil
	case FieldEndDate:
		return q.EndDate, nil
	}
	return "", fmt.Errorf("unknown field %q", field)
}

// With returns a copy of q with field replaced by value.
func (q RouteQuery) With(field Field, value string) (RouteQuery, error) {
	switch field {
	case FieldOrigin:
		q.Origin = value
	case FieldDestination:
		q.Destination = value
	case FieldStartDate:
		q.StartDate = value
	case FieldEndDate:
		q.EndDate = value
	default:
		return q, fmt.Errorf("unknown field %q", field)
	}
	return q, nil
}

// DataPoint is one day of the analysed series.
type DataPoint struct {
	Date     string
	Bookings float64
	Price    float64
}

// Analysis is a settled response of the analysis service.
type Analysis struct {
	Data     []DataPoint
	Insights Insights
}
