package domain

import "math"

// Bucket counts per category.
const (
	TemperatureBuckets   = 6
	PrecipitationBuckets = 5
	WindBuckets          = 5
	HumidityBuckets      = 5
)

// Probabilities holds one percentage vector per weather variable.
type Probabilities struct {
	Temperature   []int `json:"temperature"`
	Precipitation []int `json:"precipitation"`
	Wind          []int `json:"wind"`
	Humidity      []int `json:"humidity"`
}

// HasData reports whether the temperature vector has a positive entry,
// which is what a completed analysis always produces.
func (p Probabilities) HasData() bool {
	for _, v := range p.Temperature {
		if v > 0 {
			return true
		}
	}
	return false
}

// Factors are the two scalar inputs of every bucket formula.
type Factors struct {
	Temp  float64
	Month float64
}

// ComputeFactors derives the latitude and season factors. month is 0-11.
// The season factor is mirrored in the northern hemisphere so mid-year is
// warm there and cold in the south.
func ComputeFactors(lat float64, month int) Factors {
	temp := math.Abs(lat) / 90
	m := math.Abs(float64(month)-6.5) / 5.5
	if lat > 0 {
		m = 1 - m
	}
	return Factors{Temp: temp, Month: m}
}

// RawScores returns the rounded, unnormalized bucket scores for f.
// Negative scores are clamped to zero.
func RawScores(f Factors) Probabilities {
	t, m := f.Temp, f.Month
	return Probabilities{
		Temperature: rawVector(
			t*m*100,
			t*80-m*40,
			50-math.Abs(m-0.5)*50,
			50-t*50+m*30,
			(1-t)*m*80,
			(1-t)*m*50,
		),
		Precipitation: rawVector(
			50-m*30,
			30+m*20,
			10+m*20,
			5+m*10,
			m*5,
		),
		Wind: rawVector(
			20-m*10,
			40-m*10,
			20+m*10,
			10+m*5,
			5+m*5,
		),
		Humidity: rawVector(
			10+t*20,
			20+t*10,
			40-t*10,
			20-t*5+m*10,
			10-t*5+m*15,
		),
	}
}

func rawVector(scores ...float64) []int {
	out := make([]int, len(scores))
	for i, s := range scores {
		r := int(roundHalfUp(s))
		if r < 0 {
			r = 0
		}
		out[i] = r
	}
	return out
}

// Normalize rescales raw so its entries sum to 100, rounding each entry
// independently; the total may therefore be off by up to len(raw)/2.
// A zero-sum vector yields the uniform distribution.
func Normalize(raw []int) []int {
	sum := 0
	for _, v := range raw {
		sum += v
	}
	out := make([]int, len(raw))
	if len(raw) == 0 {
		return out
	}
	if sum == 0 {
		share := int(roundHalfUp(100 / float64(len(raw))))
		for i := range out {
			out[i] = share
		}
		return out
	}
	for i, v := range raw {
		out[i] = int(roundHalfUp(float64(v) * 100 / float64(sum)))
	}
	return out
}

// Estimate returns the simulated climatological probabilities for a
// location's latitude and a zero-based month. Longitude plays no part.
func Estimate(lat float64, month int) Probabilities {
	raw := RawScores(ComputeFactors(lat, month))
	return Probabilities{
		Temperature:   Normalize(raw.Temperature),
		Precipitation: Normalize(raw.Precipitation),
		Wind:          Normalize(raw.Wind),
		Humidity:      Normalize(raw.Humidity),
	}
}
