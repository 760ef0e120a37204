package abc

import (
	"fmt"
	"strings"
)

// ResultFormat picks the reported bit vector among the final samples.
type ResultFormat int

const (
	// Best reports the sample with the best cost.
	Best ResultFormat = iota
	// Average reports the most frequent sample; ties go to the earliest.
	Average
)

// ParseResultFormat accepts "best" or "average".
func ParseResultFormat(s string) (ResultFormat, error) {
	switch s {
	case "best":
		return Best, nil
	case "average":
		return Average, nil
	default:
		return 0, &ConfigError{Field: "ResultFormat", Reason: fmt.Sprintf("unknown token %q (want best or average)", s)}
	}
}

func (f ResultFormat) String() string {
	switch f {
	case Best:
		return "best"
	case Average:
		return "average"
	default:
		return fmt.Sprintf("ResultFormat(%d)", int(f))
	}
}

// BinarySolution is the reported bit vector and its cost. Count is how many
// of the Samples drawn at extraction decoded to exactly these bits.
type BinarySolution struct {
	Bits    []bool  `json:"bits"`
	Cost    float64 `json:"cost"`
	Count   int     `json:"count"`
	Samples int     `json:"samples"`
}

type sample struct {
	bits []bool
	cost float64
}

// extractor resamples a final position and reduces the samples to one answer.
type extractor struct {
	samples   int
	format    ResultFormat
	direction Direction
}

// extract calls draw e.samples times. It needs at least one sample.
func (e extractor) extract(draw func() ([]bool, float64)) BinarySolution {
	all := make([]sample, e.samples)
	for i := range all {
		bits, cost := draw()
		all[i] = sample{bits: bits, cost: cost}
	}

	var pick int
	switch e.format {
	case Average:
		pick = mode(all)
	default:
		for i := 1; i < len(all); i++ {
			if e.direction.prefers(all[i].cost, all[pick].cost) {
				pick = i
			}
		}
	}

	key := bitKey(all[pick].bits)
	count := 0
	for _, s := range all {
		if bitKey(s.bits) == key {
			count++
		}
	}
	return BinarySolution{
		Bits:    all[pick].bits,
		Cost:    all[pick].cost,
		Count:   count,
		Samples: len(all),
	}
}

// mode returns the index of the first occurrence of the most frequent bit pattern.
func mode(all []sample) int {
	counts := make(map[string]int, len(all))
	first := make(map[string]int, len(all))
	for i, s := range all {
		k := bitKey(s.bits)
		if _, ok := first[k]; !ok {
			first[k] = i
		}
		counts[k]++
	}

	best, bestCount := 0, 0
	for i, s := range all {
		k := bitKey(s.bits)
		if first[k] != i {
			continue
		}
		if counts[k] > bestCount {
			best, bestCount = i, counts[k]
		}
	}
	return best
}

func bitKey(bits []bool) string {
	var sb strings.Builder
	sb.Grow(len(bits))
	for _, b := range bits {
		if b {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
