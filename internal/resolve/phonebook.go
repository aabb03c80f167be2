package resolve

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ppiankov/casework/internal/logging"
	"github.com/ppiankov/casework/internal/model"
)

// MinPhonebookClue is the shortest name ending worth a directory search
const MinPhonebookClue = 2

// PhonebookResult lists the candidates a search left standing
type PhonebookResult struct {
	Alive    []string
	Deceased []string
	Name     string // Set only when resolved
}

// Resolved reports whether exactly one candidate remained
func (r PhonebookResult) Resolved() bool {
	return r.Name != ""
}

// Phonebook resolves a name ending to one player
type Phonebook struct {
	dir    Directory
	logger *slog.Logger
}

// NewPhonebook creates a phonebook resolver over dir
func NewPhonebook(dir Directory, logger *slog.Logger) *Phonebook {
	return &Phonebook{
		dir:    dir,
		logger: logging.OrDefault(logger, "phonebook"),
	}
}

// Resolve searches for names ending with suffix. Several alive matches are
// narrowed to players last online strictly after the crime, when the
// crime time is known. It resolves on exactly one alive match, or on no
// alive match and exactly one deceased.
func (p *Phonebook) Resolve(ctx context.Context, suffix, timeOfCrime string) (PhonebookResult, error) {
	var res PhonebookResult
	if len([]rune(suffix)) < MinPhonebookClue {
		return res, nil
	}

	found, err := p.dir.Search(ctx, suffix)
	if err != nil {
		return res, err
	}
	res.Alive = endingWith(found.Alive, suffix)
	res.Deceased = endingWith(found.Deceased, suffix)

	if crimeAt, ok := model.ParseGameTime(timeOfCrime); ok && len(res.Alive) > 1 {
		res.Alive = p.onlineAfter(ctx, res.Alive, crimeAt)
	}

	switch {
	case len(res.Alive) == 1:
		res.Name = res.Alive[0]
	case len(res.Alive) == 0 && len(res.Deceased) == 1:
		res.Name = res.Deceased[0]
	}
	p.logger.Info("phonebook search",
		"suffix", suffix, "alive", res.Alive, "deceased", res.Deceased, "resolved", res.Name)
	return res, nil
}

// onlineAfter keeps candidates last seen after the crime. A profile that
// cannot be opened keeps its candidate; an unreadable time drops it.
func (p *Phonebook) onlineAfter(ctx context.Context, names []string, crimeAt time.Time) []string {
	var kept []string
	for _, name := range names {
		text, opened := p.dir.LastOnline(ctx, name)
		if !opened {
			p.logger.Debug("profile not opened, keeping candidate", "name", name)
			kept = append(kept, name)
			continue
		}
		last, ok := model.ParseLastOnline(text)
		if ok && last.After(crimeAt) {
			kept = append(kept, name)
			continue
		}
		p.logger.Debug("dropping candidate", "name", name, "last_online", text)
	}
	return kept
}

func endingWith(names []string, suffix string) []string {
	var out []string
	for _, n := range names {
		if strings.HasSuffix(n, suffix) {
			out = append(out, n)
		}
	}
	return out
}
