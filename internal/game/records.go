package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppiankov/casework/internal/browser"
	"github.com/ppiankov/casework/internal/extract"
	"github.com/ppiankov/casework/internal/logging"
	"github.com/ppiankov/casework/internal/model"
)

// Records looks numeric evidence codes up in the police records database.
// A hit is added to the case as evidence, which the case page then shows
// as a full-name clue.
type Records struct {
	b         browser.Browser
	desk      *Desk
	extractor *extract.CaseExtractor
	logger    *slog.Logger
}

// NewRecords creates the DNA and fingerprint records adapter
func NewRecords(b browser.Browser, desk *Desk, logger *slog.Logger) *Records {
	return &Records{
		b:         b,
		desk:      desk,
		extractor: extract.NewCaseExtractor(),
		logger:    logging.OrDefault(logger, "records"),
	}
}

// Lookup searches the records for one DNA or fingerprint code. found is
// false when the database had no useful result. The case is reopened
// before returning either way.
func (r *Records) Lookup(ctx context.Context, kind model.EvidenceKind, code string) (string, bool, error) {
	if kind != model.EvidenceDNA && kind != model.EvidenceFingerprint {
		return "", false, fmt.Errorf("records lookup: unsupported evidence %q", kind)
	}
	if !r.b.Click(ctx, recordsLink) {
		return "", false, fmt.Errorf("open records database: %w", browser.ErrTransient)
	}
	if err := r.desk.pause(ctx); err != nil {
		return "", false, err
	}

	added := r.add(ctx, kind)
	if !added {
		r.logger.Info("records had no useful result",
			"kind", kind, "code", code, "message", r.desk.Banner(ctx))
	}

	if !r.b.Click(ctx, inTrayLink) {
		return "", false, fmt.Errorf("back to in-tray: %w", browser.ErrTransient)
	}
	if err := r.desk.pause(ctx); err != nil {
		return "", false, err
	}
	if !added {
		return "", false, nil
	}

	markup, err := r.desk.ReadCase(ctx)
	if err != nil {
		return "", false, err
	}
	c, err := r.extractor.Extract(markup)
	if err != nil {
		return "", false, fmt.Errorf("re-read case after records: %w", err)
	}

	name := c.Clues.DNAName
	if kind == model.EvidenceFingerprint {
		name = c.Clues.FingerprintName
	}
	r.logger.Info("records lookup", "kind", kind, "code", code, "name", name)
	return name, name != "", nil
}

func (r *Records) add(ctx context.Context, kind model.EvidenceKind) bool {
	if kind == model.EvidenceDNA {
		if !r.clickEither(ctx, searchDNAButton, searchDNALegacy) {
			return false
		}
	} else if !r.b.Click(ctx, fingerprintOption) {
		return false
	}
	if r.desk.pause(ctx) != nil {
		return false
	}
	return r.clickEither(ctx, addEvidenceButton, addEvidenceLegacy)
}

// clickEither tries the current markup first and the older one after
func (r *Records) clickEither(ctx context.Context, current, legacy browser.Locator) bool {
	return r.b.Click(ctx, current) || r.b.Click(ctx, legacy)
}
