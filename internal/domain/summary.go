package domain

import (
	"fmt"
	"strings"
)

// Categories selects which optional variables appear in a summary and in
// the chart series. Temperature is always included.
type Categories struct {
	Precipitation bool `json:"precipitation"`
	Wind          bool `json:"wind"`
	Humidity      bool `json:"humidity"`
}

// AllCategories enables every optional variable.
func AllCategories() Categories {
	return Categories{Precipitation: true, Wind: true, Humidity: true}
}

// Summarize describes the most likely bucket of each enabled variable, e.g.
// "For July in Lisbon, there is a 40% probability of warm weather, ...".
func Summarize(r Report, labels Labels, c Categories) string {
	var b strings.Builder
	p := r.Probabilities

	i := argmax(p.Temperature)
	fmt.Fprintf(&b, "For %s in %s, there is a %d%% probability of %s weather",
		r.MonthName(), r.Location.DisplayName(), at(p.Temperature, i), condition(labels.Temperature, i))

	if c.Precipitation {
		i = argmax(p.Precipitation)
		fmt.Fprintf(&b, ", a %d%% probability of %s", at(p.Precipitation, i), condition(labels.Precipitation, i))
	}
	if c.Wind {
		i = argmax(p.Wind)
		fmt.Fprintf(&b, ", and a %d%% probability of %s", at(p.Wind, i), condition(labels.Wind, i))
	}
	if c.Humidity {
		i = argmax(p.Humidity)
		fmt.Fprintf(&b, ". Humidity is likely to be %s (%d%%)", condition(labels.Humidity, i), at(p.Humidity, i))
	}
	b.WriteString(".")
	return b.String()
}

// Series is the {labels, data} pair a chart widget consumes.
type Series struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

// Charts pairs each enabled probability vector with its labels.
type Charts struct {
	Temperature   Series  `json:"temperature"`
	Precipitation *Series `json:"precipitation,omitempty"`
	Wind          *Series `json:"wind,omitempty"`
	Humidity      *Series `json:"humidity,omitempty"`
}

// BuildCharts assembles chart series; disabled categories are left nil.
func BuildCharts(p Probabilities, labels Labels, c Categories) Charts {
	out := Charts{Temperature: Series{Labels: labels.Temperature, Data: p.Temperature}}
	if c.Precipitation {
		out.Precipitation = &Series{Labels: labels.Precipitation, Data: p.Precipitation}
	}
	if c.Wind {
		out.Wind = &Series{Labels: labels.Wind, Data: p.Wind}
	}
	if c.Humidity {
		out.Humidity = &Series{Labels: labels.Humidity, Data: p.Humidity}
	}
	return out
}

// argmax returns the first index holding the largest value.
func argmax(v []int) int {
	best := 0
	for i := range v {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

func condition(labels []string, i int) string {
	if i >= len(labels) {
		return ""
	}
	return strings.ToLower(StripRange(labels[i]))
}
