package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/casework/internal/model"
)

const dnaPage = `<div><h2>MUGGING</h2><table>
<tr><td>Case:</td><td>#41</td></tr>
<tr><td>Victim Statement:</td><td>I was mugged.</td></tr>
<tr><td>DNA Log:</td><td>The DNA revealed JohnDoe42 was at the crime scene</td></tr>
</table></div>`

const suffixPage = `<div><h2>MUGGING</h2><table>
<tr><td>Case:</td><td>#42</td></tr>
<tr><td>Victim Statement:</td><td>Their name ended with xyz.</td></tr>
</table></div>`

func writePage(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestPageBatch_ExtractFiles(t *testing.T) {
	dir := t.TempDir()
	a := writePage(t, dir, "a.html", dnaPage)
	b := writePage(t, dir, "b.html", suffixPage)
	empty := writePage(t, dir, "c.html", "  ")
	missing := filepath.Join(dir, "missing.html")

	results := NewPageBatch(3).ExtractFiles(context.Background(), []string{a, b, empty, missing})
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	if r := results[0]; r.Error != nil || r.Case.ID != 41 || r.Resolution.Name != "JohnDoe42" {
		t.Errorf("unexpected first result: %+v", r)
	}
	if r := results[1]; r.Error != nil || r.Case.Crime != model.CrimeMugging || r.Resolution.Clue != "xyz" {
		t.Errorf("unexpected second result: %+v", r)
	}
	if results[2].Error == nil {
		t.Error("expected empty page to fail")
	}
	if results[3].Error == nil {
		t.Error("expected missing page to fail")
	}
	for i, p := range []string{a, b, empty, missing} {
		if results[i].Path != p {
			t.Errorf("result %d is %s, want %s", i, results[i].Path, p)
		}
	}
}

func TestPageBatch_Cancelled(t *testing.T) {
	dir := t.TempDir()
	a := writePage(t, dir, "a.html", dnaPage)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewPageBatch(1).ExtractFiles(ctx, []string{a})
	if len(results) != 1 || results[0].Error == nil {
		t.Fatalf("expected one failed result, got %+v", results)
	}
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	a := writePage(t, dir, "a.html", dnaPage)
	b := writePage(t, dir, "b.htm", suffixPage)
	writePage(t, dir, "notes.txt", "ignored")

	other := t.TempDir()
	c := writePage(t, other, "c.html", dnaPage)
	list := writePage(t, other, "pages.txt", "# saved pages\n"+c+"\n\n"+a+"\n")

	paths, err := ExpandPaths([]string{dir, "@" + list})
	if err != nil {
		t.Fatalf("ExpandPaths: %v", err)
	}

	want := []string{a, b, c}
	if len(paths) != len(want) {
		t.Fatalf("expected %v, got %v", want, paths)
	}
	seen := make(map[string]bool)
	for _, p := range paths {
		seen[p] = true
	}
	for _, w := range want {
		if !seen[w] {
			t.Errorf("missing %s in %v", w, paths)
		}
	}
}

func TestExpandPaths_Missing(t *testing.T) {
	if _, err := ExpandPaths([]string{filepath.Join(t.TempDir(), "nope.html")}); err == nil {
		t.Error("expected error for missing path")
	}
}
