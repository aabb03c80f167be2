package resolve

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppiankov/casework/internal/logging"
	"github.com/ppiankov/casework/internal/model"
)

// CrossReference looks numeric DNA and fingerprint codes up in the records
// database and merges any name found into the case clues
type CrossReference struct {
	records RecordsLookup
	logger  *slog.Logger
}

// NewCrossReference creates a cross-reference over records
func NewCrossReference(records RecordsLookup, logger *slog.Logger) *CrossReference {
	return &CrossReference{records: records, logger: logging.OrDefault(logger, "records")}
}

// Apply returns how many names were merged. A code without a match simply
// drops that lead; the code itself never becomes a suspect.
func (x *CrossReference) Apply(ctx context.Context, c *model.Case) (int, error) {
	merged := 0
	for _, kind := range []model.EvidenceKind{model.EvidenceDNA, model.EvidenceFingerprint} {
		ev := c.Get(kind)
		if !ev.IsNumeric() {
			continue
		}

		name, found, err := x.records.Lookup(ctx, kind, ev.Text)
		if err != nil {
			return merged, fmt.Errorf("records lookup %s: %w", kind, err)
		}
		if !found || name == "" || model.IsRecordCode(name) {
			x.logger.Info("records lead dropped", "case_id", c.ID, "kind", kind, "code", ev.Text)
			continue
		}

		if kind == model.EvidenceDNA {
			c.Clues.DNAName = name
		} else {
			c.Clues.FingerprintName = name
		}
		merged++
	}
	return merged, nil
}
