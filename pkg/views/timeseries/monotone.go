package timeseries

import "math"

// monotoneSample returns points along the monotone cubic (Fritsch-Carlson)
// curve through xs/ys, with steps samples per segment. The curve passes
// through every input point and never overshoots between two of them.
// xs must be strictly increasing.
func monotoneSample(xs, ys []float64, steps int) ([]float64, []float64) {
	n := len(xs)
	if n < 2 || steps < 1 {
		return append([]float64(nil), xs...), append([]float64(nil), ys...)
	}

	slopes := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		slopes[i] = (ys[i+1] - ys[i]) / (xs[i+1] - xs[i])
	}

	tangents := make([]float64, n)
	tangents[0] = slopes[0]
	tangents[n-1] = slopes[n-2]
	for i := 1; i < n-1; i++ {
		if slopes[i-1]*slopes[i] <= 0 {
			tangents[i] = 0
			continue
		}
		tangents[i] = (slopes[i-1] + slopes[i]) / 2
	}

	for i := 0; i < n-1; i++ {
		if slopes[i] == 0 {
			tangents[i] = 0
			tangents[i+1] = 0
			continue
		}
		a := tangents[i] / slopes[i]
		b := tangents[i+1] / slopes[i]
		if s := a*a + b*b; s > 9 {
			t := 3 / math.Sqrt(s)
			tangents[i] = t * a * slopes[i]
			tangents[i+1] = t * b * slopes[i]
		}
	}

	outX := make([]float64, 0, (n-1)*steps+1)
	outY := make([]float64, 0, (n-1)*steps+1)
	for i := 0; i < n-1; i++ {
		h := xs[i+1] - xs[i]
		for k := 0; k < steps; k++ {
			t := float64(k) / float64(steps)
			t2, t3 := t*t, t*t*t
			h00 := 2*t3 - 3*t2 + 1
			h10 := t3 - 2*t2 + t
			h01 := -2*t3 + 3*t2
			h11 := t3 - t2
			outX = append(outX, xs[i]+t*h)
			outY = append(outY, h00*ys[i]+h10*h*tangents[i]+h01*ys[i+1]+h11*h*tangents[i+1])
		}
	}
	outX = append(outX, xs[n-1])
	outY = append(outY, ys[n-1])
	return outX, outY
}
