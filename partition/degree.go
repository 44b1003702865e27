package partition

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/exascience/amorphous/foreach/stats"
)

// ReportDegreeDistribution computes the mean and standard deviation of the
// per-host outgoing-edge tallies InspectEdges produced, and records them
// into reporter under the "degreeMean", "degreeStdDev" and
// "degreeVarianceX1000" stat names, labeled "host<self>.assignedTo<h>"
// for each true-owner host h.
// It is the one place partition construction reports through
// foreach/stats rather than returning a value directly, matching the
// original's habit of funneling per-phase summaries through the same
// statistics sink the engine uses.
func ReportDegreeDistribution(g *Graph, insp *InspectionResult, reporter *stats.Reporter) {
	label := fmt.Sprintf("host%d", g.Self)
	for h, tallies := range insp.NumOutgoingEdges {
		if len(tallies) == 0 {
			continue
		}
		samples := make([]float64, 0, len(tallies))
		for _, t := range tallies {
			if t == 0 {
				continue // not a master assigned to host h
			}
			samples = append(samples, float64(t-1)) // strip the "present" bias of 1+degree
		}
		if len(samples) == 0 {
			continue
		}
		hostLabel := fmt.Sprintf("%s.assignedTo%d", label, h)
		mean, variance := stat.MeanVariance(samples, nil)
		reporter.ReportAvg("degreeMean", hostLabel, mean)
		reporter.ReportAvg("degreeStdDev", hostLabel, stat.StdDev(samples, nil))
		reporter.ReportSum("degreeVarianceX1000", hostLabel, int64(variance*1000))
	}
}
