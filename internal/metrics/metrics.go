// Package metrics counts case outcomes on a dedicated registry that can be
// exported as a node-exporter textfile after each run
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the casework counters. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// dispositions counts settled cases.
	// Labels: disposition (closed, buried, returned), reason
	dispositions *prometheus.CounterVec

	// resolutions counts named suspects by the rule that named them.
	// Labels: source (dna, fingerprint, forensics, phonebook, bulletin)
	resolutions *prometheus.CounterVec

	// evidenceRequests counts evidence buttons pressed.
	// Labels: kind (fingerprint, dna, travel, fire_investigation, forensics, records)
	evidenceRequests *prometheus.CounterVec
}

// New creates the engine metrics on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		dispositions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "casework",
			Name:      "dispositions_total",
			Help:      "Cases settled by disposition and reason",
		}, []string{"disposition", "reason"}),
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "casework",
			Name:      "resolutions_total",
			Help:      "Suspects named by resolution source",
		}, []string{"source"}),
		evidenceRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "casework",
			Name:      "evidence_requests_total",
			Help:      "Evidence collection requests by kind",
		}, []string{"kind"}),
	}
}

// Registry exposes the registry for gathering
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Disposition counts a settled case. A nil receiver is a no-op, as for every recorder below.
func (m *Metrics) Disposition(disposition, reason string) {
	if m == nil {
		return
	}
	m.dispositions.WithLabelValues(disposition, reason).Inc()
}

// Resolution counts a suspect named by source
func (m *Metrics) Resolution(source string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(source).Inc()
}

// EvidenceRequest counts a request of one evidence kind
func (m *Metrics) EvidenceRequest(kind string) {
	if m == nil {
		return
	}
	m.evidenceRequests.WithLabelValues(kind).Inc()
}

// WriteTextfile writes every metric to path in the text exposition format
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
