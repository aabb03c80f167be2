package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/casework/internal/cache"
	"github.com/ppiankov/casework/internal/game"
	"github.com/ppiankov/casework/internal/logging"
	"github.com/ppiankov/casework/internal/metrics"
	"github.com/ppiankov/casework/internal/notify"
	"github.com/ppiankov/casework/internal/pipeline"
	"github.com/ppiankov/casework/internal/resolve"
	"github.com/ppiankov/casework/internal/store"
)

var (
	operatingName   string
	doForensics     bool
	actionRemaining time.Duration
	solveTimeout    time.Duration
	noCache         bool
)

// solveCmd represents the solve command
var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Resolve one case",
	Long: `Solve opens the active case, or picks one from the in-tray or the
reported cases, and drives it to a disposition:
- collect missing evidence once per kind
- cross-reference numeric codes against the records database
- name the suspect from evidence, phonebook or the 911 register
- close, bury or return the case

The suggested wait before the next invocation is printed on stdout.

Example:
  casework solve
  casework solve --name Detective --forensics
  casework solve --action-remaining 0`,
	Args: cobra.NoArgs,
	RunE: runSolve,
}

func init() {
	rootCmd.AddCommand(solveCmd)

	solveCmd.Flags().StringVar(&operatingName, "name", "", "operating character name (default: police.character)")
	solveCmd.Flags().BoolVar(&doForensics, "forensics", false, "request forensics for cases with no leads")
	solveCmd.Flags().DurationVar(&actionRemaining, "action-remaining", -1, "assume this much action time remains instead of reading the header timer")
	solveCmd.Flags().DurationVar(&solveTimeout, "timeout", 5*time.Minute, "overall timeout for the invocation")
	solveCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the phonebook cache")
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("forensics") {
		cfg.Police.DoForensics = doForensics
	}
	if operatingName == "" {
		operatingName = cfg.Police.Character
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, solveTimeout)
	defer cancel()

	logger := logging.New("solve")

	g, err := openGame(cfg, logger)
	if err != nil {
		return err
	}
	defer g.Close()

	var directory resolve.Directory = game.NewDirectory(g.browser, g.desk, logger)
	if cfg.Phonebook.CacheEnabled && !noCache {
		layered := cache.NewLayeredCache(cfg.Phonebook.MemoryTTL, filepath.Join(cfg.Storage.DataDir, "cache"), cfg.Phonebook.DiskTTL)
		directory = resolve.NewCachedDirectory(directory, layered, 0, logger)
	}

	var clock pipeline.ActionClock = game.NewHeaderClock(g.browser, logger)
	if actionRemaining >= 0 {
		clock = pipeline.FixedClock(actionRemaining)
	}

	m := metrics.New()
	deps := pipeline.Deps{
		Desk:       g.desk,
		Records:    game.NewRecords(g.browser, g.desk, logger),
		Directory:  directory,
		Forensics:  game.NewDuties(g.browser, g.desk, logger),
		Clock:      clock,
		Pending:    store.NewPendingForensics(cfg.Storage.DataDir, logger),
		Bulletins:  store.NewBulletins(cfg.Storage.DataDir, logger),
		Identities: store.NewIdentities(cfg.Storage.DataDir, logger),
		Notifier:   notify.New(cfg.Notify, logger),
		Metrics:    m,
		Guard:      g.guard,
		Logger:     logger,
	}

	if cfg.Storage.Journal != "" {
		journal, err := store.OpenJournal(ctx, cfg.Storage.Journal)
		if err != nil {
			logger.Warn("journal unavailable", "error", err)
		} else {
			defer func() { _ = journal.Close() }()
			deps.Journal = journal
		}
	}

	p := pipeline.New(deps, cfg.Police)
	out, runErr := p.Run(ctx, operatingName)

	if cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("metrics textfile", "error", err)
		}
	}

	printOutcome(out)
	if runErr != nil {
		return fmt.Errorf("solve: %w", runErr)
	}
	return nil
}

func printOutcome(out pipeline.Outcome) {
	switch {
	case out.Disposition != "":
		fmt.Fprintf(os.Stderr, "Case #%d: %s", out.CaseID, out.Disposition)
		if out.Suspect != "" {
			fmt.Fprintf(os.Stderr, " -> %s (%s)", out.Suspect, out.Source)
		}
		fmt.Fprintf(os.Stderr, " [%s]\n", out.Reason)
	case out.Reason != "":
		fmt.Fprintf(os.Stderr, "No case settled: %s\n", out.Reason)
	default:
		fmt.Fprintf(os.Stderr, "No case settled\n")
	}
	fmt.Fprintf(os.Stderr, "Progress: %v\n", out.Progress)
	fmt.Println(out.Wait.Round(time.Second))
}
