package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ppiankov/casework/internal/extract"
	"github.com/ppiankov/casework/internal/logging"
	"github.com/ppiankov/casework/internal/metrics"
	"github.com/ppiankov/casework/internal/model"
)

var (
	// ErrEvidencePending means DNA results are still processing
	ErrEvidencePending = errors.New("evidence still processing")

	// ErrCollectionIncomplete means a UI step could not complete. It is
	// never a negative evidentiary result.
	ErrCollectionIncomplete = errors.New("evidence collection incomplete")
)

// Collector brings each missing evidence field to a resolved state,
// requesting every kind at most once per visit
type Collector struct {
	desk      CaseDesk
	extractor *extract.CaseExtractor
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewCollector creates a collector requesting through desk
func NewCollector(desk CaseDesk, m *metrics.Metrics, logger *slog.Logger) *Collector {
	return &Collector{
		desk:      desk,
		extractor: extract.NewCaseExtractor(),
		metrics:   m,
		logger:    logging.OrDefault(logger, "collector"),
	}
}

// Collect requests fire investigation (torch only), fingerprints, DNA and
// travel in that order and returns the case as last read. It stops with
// ErrEvidencePending when DNA is awaiting results, and reports
// ErrCollectionIncomplete when any request could not be made.
func (col *Collector) Collect(ctx context.Context, c *model.Case) (*model.Case, error) {
	var failed []model.EvidenceKind

	for _, kind := range model.EvidenceKinds {
		if col.needs(c, kind) {
			if !col.desk.RequestEvidence(ctx, kind, c.IsTorch()) {
				col.logger.Warn("evidence request failed", "case_id", c.ID, "kind", kind)
				failed = append(failed, kind)
				continue
			}
			col.metrics.EvidenceRequest(string(kind))

			fresh, err := col.reread(ctx)
			if err != nil {
				return c, fmt.Errorf("%w: %v", ErrCollectionIncomplete, err)
			}
			c = fresh
			col.logger.Info("evidence requested",
				"case_id", c.ID, "kind", kind, "state", c.Get(kind).State().String())
		}

		if kind == model.EvidenceDNA && c.Get(kind).State() == model.StatePending {
			break
		}
	}

	if c.Get(model.EvidenceDNA).State() == model.StatePending {
		return c, ErrEvidencePending
	}
	if len(failed) > 0 {
		return c, fmt.Errorf("%w: %v", ErrCollectionIncomplete, failed)
	}
	return c, nil
}

// needs reports whether a kind still has to be requested. The travel
// "no valid evidence" text is a value and is never re-requested.
func (col *Collector) needs(c *model.Case, kind model.EvidenceKind) bool {
	state := c.Get(kind).State()
	switch kind {
	case model.EvidenceFireInvestigation:
		return c.IsTorch() && (state == model.StateAbsent || state == model.StateBlank)
	default:
		return state == model.StateAbsent
	}
}

func (col *Collector) reread(ctx context.Context) (*model.Case, error) {
	markup, err := col.desk.ReadCase(ctx)
	if err != nil {
		return nil, err
	}
	return col.extractor.Extract(markup)
}
