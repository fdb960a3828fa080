package timeseries

import (
	"errors"
	"math"

	"github.com/de-tools/route-trends/pkg/models/domain"
)

const (
	DefaultWidth  = 960
	DefaultHeight = 350

	interpolationMonotone = "monotone"
)

var ErrEmptyDataset = errors.New("time series is empty")

type Axis string

const (
	AxisLeft  Axis = "left"
	AxisRight Axis = "right"
)

type Tick struct {
	Value float64
	Label string
}

type XAxis struct {
	DataKey  string
	Ticks    []Tick
	Min, Max float64
}

type YAxis struct {
	ID       Axis
	Label    string
	Min, Max float64
}

type Point struct {
	X    float64
	Date string
	Y    float64
}

type Series struct {
	Name          string
	DataKey       string
	Axis          Axis
	Color         string
	Interpolation string
	Points        []Point
}

type TooltipValue struct {
	Series string
	Value  float64
}

// Tooltip lists every series value at one x position.
type Tooltip struct {
	X      float64
	Date   string
	Values []TooltipValue
}

type Grid struct {
	DashArray []float64
}

// Chart is the full description of the dual-axis chart for one dataset.
type Chart struct {
	Title      string
	Width      int
	Height     int
	Responsive bool
	Grid       Grid
	XAxis      XAxis
	Left       YAxis
	Right      YAxis
	Series     []Series
	Tooltips   []Tooltip
	Legend     []string
}

type Options struct {
	Width  int
	Height int
	// Fixed disables scaling to the parent container.
	Fixed bool
}

// Build maps dataset onto the chart. Points keep the order they arrive in
// and are neither aggregated nor sorted.
func Build(dataset []domain.DataPoint, opts Options) (*Chart, error) {
	if len(dataset) == 0 {
		return nil, ErrEmptyDataset
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	n := len(dataset)
	ticks := make([]Tick, 0, n)
	bookings := make([]Point, 0, n)
	prices := make([]Point, 0, n)
	tooltips := make([]Tooltip, 0, n)
	bookingValues := make([]float64, 0, n)
	priceValues := make([]float64, 0, n)

	for i, p := range dataset {
		x := float64(i + 1)
		ticks = append(ticks, Tick{Value: x, Label: p.Date})
		bookings = append(bookings, Point{X: x, Date: p.Date, Y: p.Bookings})
		prices = append(prices, Point{X: x, Date: p.Date, Y: p.Price})
		bookingValues = append(bookingValues, p.Bookings)
		priceValues = append(priceValues, p.Price)
		tooltips = append(tooltips, Tooltip{
			X:    x,
			Date: p.Date,
			Values: []TooltipValue{
				{Series: "bookings", Value: p.Bookings},
				{Series: "price", Value: p.Price},
			},
		})
	}

	leftMin, leftMax := valueRange(bookingValues)
	rightMin, rightMax := valueRange(priceValues)

	return &Chart{
		Title:      "Bookings & Prices Over Time",
		Width:      width,
		Height:     height,
		Responsive: !opts.Fixed,
		Grid:       Grid{DashArray: []float64{3, 3}},
		XAxis: XAxis{
			DataKey: "date",
			Ticks:   ticks,
			Min:     0.5,
			Max:     float64(n) + 0.5,
		},
		Left:  YAxis{ID: AxisLeft, Label: "Bookings", Min: leftMin, Max: leftMax},
		Right: YAxis{ID: AxisRight, Label: "Price ($)", Min: rightMin, Max: rightMax},
		Series: []Series{
			{
				Name:          "bookings",
				DataKey:       "bookings",
				Axis:          AxisLeft,
				Color:         "#8884d8",
				Interpolation: interpolationMonotone,
				Points:        bookings,
			},
			{
				Name:          "price",
				DataKey:       "price",
				Axis:          AxisRight,
				Color:         "#82ca9d",
				Interpolation: interpolationMonotone,
				Points:        prices,
			},
		},
		Tooltips: tooltips,
		Legend:   []string{"bookings", "price"},
	}, nil
}

// valueRange anchors the axis at zero for non-negative data and leaves
// 10% headroom; a flat series still gets a non-zero span.
func valueRange(values []float64) (float64, float64) {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span <= 0 {
		return lo, lo + 1
	}
	if lo < 0 {
		lo -= span * 0.1
	}
	return lo, hi + span*0.1
}
