package usecase

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// Summary describes a distribution of counts.
type Summary struct {
	Count  int
	Sum    float64
	Mean   float64
	Median float64
	Max    float64
}

// Summarize computes the Summary of values. An empty input yields a zero Summary.
func Summarize(values []int) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, nil
	}
	data := stats.LoadRawData(values)

	sum, err := data.Sum()
	if err != nil {
		return Summary{}, fmt.Errorf("failed to sum values: %w", err)
	}
	mean, err := data.Mean()
	if err != nil {
		return Summary{}, fmt.Errorf("failed to compute mean: %w", err)
	}
	median, err := data.Median()
	if err != nil {
		return Summary{}, fmt.Errorf("failed to compute median: %w", err)
	}
	maxValue, err := data.Max()
	if err != nil {
		return Summary{}, fmt.Errorf("failed to compute max: %w", err)
	}
	return Summary{
		Count:  len(values),
		Sum:    sum,
		Mean:   mean,
		Median: median,
		Max:    maxValue,
	}, nil
}
