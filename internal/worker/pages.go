package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ppiankov/casework/internal/extract"
	"github.com/ppiankov/casework/internal/model"
	"github.com/ppiankov/casework/internal/resolve"
)

// PageJob extracts one saved case page
type PageJob struct {
	Path      string
	Extractor *extract.CaseExtractor
	Resolver  *resolve.SuspectResolver
}

// Execute reads and extracts the page
func (j *PageJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &PageResult{Path: j.Path, Error: err}
	}
	markup, err := os.ReadFile(j.Path)
	if err != nil {
		return &PageResult{Path: j.Path, Error: fmt.Errorf("read page: %w", err)}
	}
	c, err := j.Extractor.Extract(string(markup))
	if err != nil {
		return &PageResult{Path: j.Path, Error: err}
	}
	return &PageResult{Path: j.Path, Case: c, Resolution: j.Resolver.Resolve(c)}
}

// PageResult is a case snapshot plus what its text alone says about the suspect
type PageResult struct {
	Path       string
	Case       *model.Case
	Resolution resolve.Resolution
	Error      error
}

// GetError returns the extraction error
func (r *PageResult) GetError() error {
	return r.Error
}

// PageBatch extracts many saved case pages concurrently
type PageBatch struct {
	extractor   *extract.CaseExtractor
	resolver    *resolve.SuspectResolver
	concurrency int
}

// NewPageBatch creates a batch running concurrency extractions at once
func NewPageBatch(concurrency int) *PageBatch {
	return &PageBatch{
		extractor:   extract.NewCaseExtractor(),
		resolver:    resolve.NewSuspectResolver(),
		concurrency: concurrency,
	}
}

// ExtractFiles returns one result per path, in path order
func (b *PageBatch) ExtractFiles(ctx context.Context, paths []string) []*PageResult {
	if len(paths) == 0 {
		return []*PageResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&PageJob{Path: path, Extractor: b.extractor, Resolver: b.resolver})
	}
	results := pool.Wait()

	out := make([]*PageResult, len(paths))
	for i, path := range paths {
		if i < len(results) && results[i] != nil {
			out[i] = results[i].(*PageResult)
			continue
		}
		out[i] = &PageResult{Path: path, Error: context.Cause(ctx)}
		if out[i].Error == nil {
			out[i].Error = fmt.Errorf("extraction cancelled")
		}
	}
	return out
}

// ExpandPaths turns arguments into page files. A directory contributes
// its *.html and *.htm files; "@list.txt" reads one path per line.
// Duplicates are dropped and the result is sorted.
func ExpandPaths(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		if list, ok := strings.CutPrefix(arg, "@"); ok {
			listed, err := ReadPathList(list)
			if err != nil {
				return nil, err
			}
			for _, p := range listed {
				add(p)
			}
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		for _, pattern := range []string{"*.html", "*.htm"} {
			matches, err := filepath.Glob(filepath.Join(arg, pattern))
			if err != nil {
				return nil, err
			}
			for _, m := range matches {
				add(m)
			}
		}
	}

	slices.Sort(paths)
	return paths, nil
}

// ReadPathList reads paths from a file (one per line, # comments allowed)
func ReadPathList(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open path list: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan path list: %w", err)
	}
	return paths, nil
}
