package resolve

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/ppiankov/casework/internal/logging"
	"github.com/ppiankov/casework/internal/model"
)

// minBulletinSuffix is the shortest reported suspect ending that is used
const minBulletinSuffix = 2

// BulletinMatcher identifies a suspect from who was online when a matching
// 911 report was copied
type BulletinMatcher struct {
	source BulletinSource
	logger *slog.Logger
}

// NewBulletinMatcher creates a matcher reading reports from source
func NewBulletinMatcher(source BulletinSource, logger *slog.Logger) *BulletinMatcher {
	return &BulletinMatcher{source: source, logger: logging.OrDefault(logger, "bulletins")}
}

// Resolve finds reports with exactly the case's time of crime and victim
// (victim compared case-insensitively) and intersects each report's suspect
// ending with its online list. Candidates are pooled over every matching
// report, not just the first, so duplicate or conflicting reports of one
// crime can only widen the field. Exactly one distinct name resolves.
func (m *BulletinMatcher) Resolve(c *model.Case) (string, bool) {
	when := strings.TrimSpace(c.TimeOfCrime)
	victim := strings.TrimSpace(c.Victim)
	if when == "" || victim == "" {
		return "", false
	}

	var names []string
	matched := 0
	for _, b := range m.source.ReadAll() {
		if b.Time != when || !strings.EqualFold(b.Victim, victim) {
			continue
		}
		matched++

		suffix := strings.TrimSpace(b.Suspect)
		if len([]rune(suffix)) < minBulletinSuffix {
			continue
		}
		for _, user := range b.OnlineUsers {
			if strings.HasSuffix(user, suffix) && !slices.Contains(names, user) {
				names = append(names, user)
			}
		}
	}

	if matched == 0 {
		return "", false
	}
	m.logger.Info("911 match", "case_id", c.ID, "reports", matched, "candidates", names)
	if len(names) != 1 {
		return "", false
	}
	return names[0], true
}
