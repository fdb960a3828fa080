package adapters

import (
	"errors"
	"slices"

	"github.com/de-tools/route-trends/pkg/models/api"
	"github.com/de-tools/route-trends/pkg/models/domain"
)

var (
	errMissingData     = errors.New("response has no data")
	errMissingInsights = errors.New("response has no insights")
)

func MapDomainQueryToAPIRequest(q domain.RouteQuery) api.AnalyzeRequest {
	return api.AnalyzeRequest{
		Origin:      q.Origin,
		Destination: q.Destination,
		StartDate:   q.StartDate,
		EndDate:     q.EndDate,
	}
}

func MapAPIRequestToDomainQuery(r api.AnalyzeRequest) domain.RouteQuery {
	return domain.RouteQuery{
		Origin:      r.Origin,
		Destination: r.Destination,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
	}
}

func MapDomainDataPointsToAPI(points []domain.DataPoint) []api.DataPoint {
	out := make([]api.DataPoint, 0, len(points))
	for _, p := range points {
		out = append(out, api.DataPoint{Date: p.Date, Bookings: p.Bookings, Price: p.Price})
	}
	return out
}

func MapAPIDataPointsToDomain(points []api.DataPoint) []domain.DataPoint {
	out := make([]domain.DataPoint, 0, len(points))
	for _, p := range points {
		out = append(out, domain.DataPoint{Date: p.Date, Bookings: p.Bookings, Price: p.Price})
	}
	return out
}

// MapAPIInsightsToDomain picks the variant by the presence of the error key.
func MapAPIInsightsToDomain(in api.Insights) domain.Insights {
	if in.Error != nil {
		return domain.Failure{Message: *in.Error}
	}
	return domain.Summary{
		DemandTrend:  in.DemandTrend,
		PriceTrend:   in.PriceTrend,
		PopularDays:  slices.Clone(in.PopularDays),
		Observations: in.Observations,
	}
}

// MapAPIResponseToDomainAnalysis fails when either top-level key is missing
// or null.
func MapAPIResponseToDomainAnalysis(resp api.AnalyzeResponse) (*domain.Analysis, error) {
	if resp.Data == nil {
		return nil, errMissingData
	}
	if resp.Insights == nil {
		return nil, errMissingInsights
	}
	return &domain.Analysis{
		Data:     MapAPIDataPointsToDomain(*resp.Data),
		Insights: MapAPIInsightsToDomain(*resp.Insights),
	}, nil
}
