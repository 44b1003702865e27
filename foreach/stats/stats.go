/*
Package stats provides a small named-counter/named-distribution sink,
playing the role of Galois's external statistics reporter: engines and the
partitioner report values by name and loop/context label, and a Reporter
decides what to do with them (accumulate in memory, print, forward to a
monitoring system, ...).
*/
package stats

import (
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// A Reporter collects named sums and named distributions, tagged with a
// loop or context label the way the original tags every stat with a
// loopname.
type Reporter struct {
	mu      sync.Mutex
	sums    map[key]int64
	samples map[key][]float64
}

type key struct {
	name  string
	label string
}

// NewReporter returns an empty Reporter.
func NewReporter() *Reporter {
	return &Reporter{
		sums:    make(map[key]int64),
		samples: make(map[key][]float64),
	}
}

// ReportSum adds value to the running total for (name, label), the
// equivalent of the original's reportStatSum.
func (r *Reporter) ReportSum(name, label string, value int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sums[key{name, label}] += value
}

// Sum returns the current running total for (name, label).
func (r *Reporter) Sum(name, label string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sums[key{name, label}]
}

// ReportAvg records one more sample of value for the (name, label)
// distribution, the equivalent of the original's reportStatAvg.
func (r *Reporter) ReportAvg(name, label string, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{name, label}
	r.samples[k] = append(r.samples[k], value)
}

// Average returns the mean of all samples recorded for (name, label), or
// 0 if none were recorded.
func (r *Reporter) Average(name, label string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	samples := r.samples[key{name, label}]
	if len(samples) == 0 {
		return 0
	}
	return stat.Mean(samples, nil)
}

// StdDev returns the sample standard deviation of the (name, label)
// distribution, or 0 if fewer than two samples were recorded.
func (r *Reporter) StdDev(name, label string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	samples := r.samples[key{name, label}]
	if len(samples) < 2 {
		return 0
	}
	return stat.StdDev(samples, nil)
}

// Dump returns a deterministic, human-readable rendering of every
// recorded sum, sorted by label then name, useful for tests and for a
// plain-text report at loop teardown.
func (r *Reporter) Dump() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]key, 0, len(r.sums))
	for k := range r.sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].label != keys[j].label {
			return keys[i].label < keys[j].label
		}
		return keys[i].name < keys[j].name
	})
	out := ""
	for _, k := range keys {
		out += fmt.Sprintf("%s (%s): %d\n", k.name, k.label, r.sums[k])
	}
	return out
}
