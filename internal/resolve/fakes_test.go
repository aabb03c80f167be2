package resolve

import (
	"context"

	"github.com/ppiankov/casework/internal/extract"
	"github.com/ppiankov/casework/internal/model"
)

type fakeDirectory struct {
	results  extract.DirectoryResults
	err      error
	online   map[string]string
	unopened map[string]bool

	searches []string
	profiles []string
}

func (d *fakeDirectory) Search(_ context.Context, term string) (extract.DirectoryResults, error) {
	d.searches = append(d.searches, term)
	return d.results, d.err
}

func (d *fakeDirectory) LastOnline(_ context.Context, name string) (string, bool) {
	d.profiles = append(d.profiles, name)
	if d.unopened[name] {
		return "", false
	}
	return d.online[name], true
}

type fakeRecords struct {
	names map[string]string
	err   error
	calls []model.EvidenceKind
}

func (r *fakeRecords) Lookup(_ context.Context, kind model.EvidenceKind, code string) (string, bool, error) {
	r.calls = append(r.calls, kind)
	if r.err != nil {
		return "", false, r.err
	}
	name, ok := r.names[code]
	return name, ok, nil
}

type bulletinList []model.Bulletin

func (l bulletinList) ReadAll() []model.Bulletin { return l }

func caseWith(crime model.CrimeType, evidence map[model.EvidenceKind]string, clues model.Clues) *model.Case {
	c := model.NewCase()
	c.ID = 4242
	c.Crime = crime
	c.Clues = clues
	for kind, text := range evidence {
		c.Evidence[kind] = model.Evidence{Kind: kind, Text: text}
	}
	return c
}
