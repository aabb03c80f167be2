package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/casework/internal/worker"
)

var (
	concurrency   int
	extractFormat string
	extractTimout time.Duration
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <file|dir|@list>...",
	Short: "Extract saved case pages offline",
	Long: `Extract parses saved case pages without a browser and prints each
snapshot together with what its text alone says about the suspect.

Directories contribute their .html and .htm files; @list.txt reads one
path per line.

Example:
  casework extract case.html
  casework extract ./saved-cases --format json
  casework extract @pages.txt --concurrency 8`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	extractCmd.Flags().StringVar(&extractFormat, "format", "yaml", "output format (yaml, json)")
	extractCmd.Flags().DurationVar(&extractTimout, "timeout", time.Minute, "total timeout")
}

type extractOutput struct {
	Path       string      `json:"path" yaml:"path"`
	Case       interface{} `json:"case,omitempty" yaml:"case,omitempty"`
	Suspect    string      `json:"suspect,omitempty" yaml:"suspect,omitempty"`
	Source     string      `json:"source,omitempty" yaml:"source,omitempty"`
	NameEnding string      `json:"name_ending,omitempty" yaml:"name_ending,omitempty"`
	Error      string      `json:"error,omitempty" yaml:"error,omitempty"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), extractTimout)
	defer cancel()

	paths, err := worker.ExpandPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no case pages found")
	}

	results := worker.NewPageBatch(concurrency).ExtractFiles(ctx, paths)

	failures := 0
	out := make([]extractOutput, 0, len(results))
	for _, r := range results {
		o := extractOutput{Path: r.Path}
		if r.Error != nil {
			failures++
			o.Error = r.Error.Error()
		} else {
			o.Case = r.Case
			o.Suspect = r.Resolution.Name
			o.Source = string(r.Resolution.Source)
			o.NameEnding = r.Resolution.Clue
		}
		out = append(out, o)
	}

	switch extractFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case "yaml":
		data, err := yaml.Marshal(out)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		fmt.Print(string(data))
	default:
		return fmt.Errorf("unknown format %q", extractFormat)
	}

	fmt.Fprintf(os.Stderr, "Extracted %d page(s), %d failed\n", len(results)-failures, failures)
	if failures == len(results) {
		return fmt.Errorf("no page could be extracted")
	}
	return nil
}
