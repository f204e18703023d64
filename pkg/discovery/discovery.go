// Package discovery decides whether a probe reached a resource that was
// not reachable before: something that is neither the site's not-found
// page nor a copy of the baseline response.
package discovery

import (
	"github.com/waftester/mutaprobe/pkg/compare"
	"github.com/waftester/mutaprobe/pkg/defaults"
	"github.com/waftester/mutaprobe/pkg/probe"
)

// NotFoundDetector recognizes a site's not-found responses.
// calibration.Calibrator satisfies it.
type NotFoundDetector interface {
	IsNotFound(resp *probe.Response) bool
}

// NotFoundFunc adapts a function to NotFoundDetector.
type NotFoundFunc func(resp *probe.Response) bool

// IsNotFound calls f(resp).
func (f NotFoundFunc) IsNotFound(resp *probe.Response) bool { return f(resp) }

// StatusNotFound treats only status 404 as not found.
var StatusNotFound NotFoundFunc = func(resp *probe.Response) bool {
	return resp != nil && resp.StatusCode == 404
}

// Classifier decides whether a candidate response is new content.
type Classifier struct {
	notFound  NotFoundDetector
	threshold float64
}

// New returns a classifier. A nil detector falls back to StatusNotFound;
// a threshold outside (0,1] falls back to defaults.SimilarityThreshold.
func New(nf NotFoundDetector, threshold float64) *Classifier {
	if nf == nil {
		nf = StatusNotFound
	}
	if threshold <= 0 || threshold > 1 {
		threshold = defaults.SimilarityThreshold
	}
	return &Classifier{notFound: nf, threshold: threshold}
}

// Threshold returns the similarity threshold in use.
func (c *Classifier) Threshold() float64 { return c.threshold }

// IsNewResource reports whether candidate is not a not-found response and
// its body is less similar to baseline than the threshold.
func (c *Classifier) IsNewResource(baseline, candidate *probe.Response) bool {
	return IsNewResource(c.notFound, baseline, candidate, c.threshold)
}

// IsNewResource is the stateless form of Classifier.IsNewResource.
func IsNewResource(nf NotFoundDetector, baseline, candidate *probe.Response, threshold float64) bool {
	if candidate == nil || nf.IsNotFound(candidate) {
		return false
	}
	var base []byte
	if baseline != nil {
		base = baseline.Body
	}
	return compare.Below(base, candidate.Body, threshold)
}
