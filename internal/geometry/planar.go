package geometry

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ExtentBuffer is the padding Extent adds beyond the rounded bounds.
const ExtentBuffer = 0.2

// Interval is a closed range on one axis.
type Interval struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// SortCCW returns a copy of 2D points ordered counter-clockwise by angle
// around their mean, which turns a hull's vertex set into a drawable polygon.
// Points of any other dimension are returned in their original order.
func SortCCW(points [][]float64) [][]float64 {
	out := make([][]float64, len(points))
	copy(out, points)
	if len(points) == 0 || len(points[0]) != 2 {
		return out
	}
	mean := make([]float64, 2)
	for _, p := range points {
		floats.Add(mean, p)
	}
	floats.Scale(1/float64(len(points)), mean)
	angle := func(p []float64) float64 { return math.Atan2(p[1]-mean[1], p[0]-mean[0]) }
	sort.SliceStable(out, func(i, j int) bool { return angle(out[i]) < angle(out[j]) })
	return out
}

// Extent returns per-axis bounds of points, floored/ceiled to integers and
// padded by buffer on both sides.
func Extent(points [][]float64, buffer float64) []Interval {
	if len(points) == 0 {
		return nil
	}
	d := len(points[0])
	out := make([]Interval, d)
	for k := 0; k < d; k++ {
		lo, hi := points[0][k], points[0][k]
		for _, p := range points[1:] {
			lo = math.Min(lo, p[k])
			hi = math.Max(hi, p[k])
		}
		out[k] = Interval{Min: math.Floor(lo) - buffer, Max: math.Ceil(hi) + buffer}
	}
	return out
}
