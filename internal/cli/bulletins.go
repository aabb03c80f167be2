package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/casework/internal/extract"
	"github.com/ppiankov/casework/internal/game"
	"github.com/ppiankov/casework/internal/logging"
	"github.com/ppiankov/casework/internal/model"
	"github.com/ppiankov/casework/internal/notify"
	"github.com/ppiankov/casework/internal/store"
)

var (
	registerFile string
	onlineFile   string
	onlineIgnore []string
)

// bulletinsCmd represents the bulletins command
var bulletinsCmd = &cobra.Command{
	Use:   "bulletins",
	Short: "Manage the cached 911 register",
	Long: `The 911 register lists recent emergency calls with a name ending for the
suspect. Copied together with the online list of the moment, a report can
identify a suspect when exactly one online player has that ending.`,
}

var bulletinsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a saved register page and online list",
	Long: `Import parses a saved emergency register page and a pasted online list,
pairs every report with the online users and appends the new ones.

Example:
  casework bulletins import --register register.html --online online.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		markup, err := os.ReadFile(registerFile)
		if err != nil {
			return fmt.Errorf("read register: %w", err)
		}
		reports, err := extract.ParseRegister(string(markup))
		if err != nil {
			return err
		}
		return storeBulletins(reports)
	},
}

var bulletinsCaptureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Read the live register through the browser",
	Long: `Capture opens the emergency register in the browser session and stores
its reports with the given online list.

Example:
  casework bulletins capture --online online.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		g, err := openGame(cfg, logging.New("bulletins"))
		if err != nil {
			return err
		}
		defer g.Close()

		if err := g.guard.Acquire(ctx); err != nil {
			return err
		}
		reports, err := game.NewRegister(g.browser).Read(ctx)
		g.guard.Release()
		if err != nil {
			return err
		}
		return storeBulletins(reports)
	},
}

var bulletinsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached 911 reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		all := store.NewBulletins(cfg.Storage.DataDir, logging.New("bulletins")).ReadAll()
		for _, b := range all {
			fmt.Printf("%s\t%s\t%s\t%s\t%d online\n", b.Time, b.Crime, b.Victim, b.Suspect, len(b.OnlineUsers))
		}
		fmt.Fprintf(os.Stderr, "%d report(s)\n", len(all))
		return nil
	},
}

// storeBulletins pairs reports with the online list and appends the new
// ones. New whacking reports are announced through the notifier.
func storeBulletins(reports []model.Bulletin) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var online []string
	if onlineFile != "" {
		block, err := os.ReadFile(onlineFile)
		if err != nil {
			return fmt.Errorf("read online list: %w", err)
		}
		var patterns []string
		if len(onlineIgnore) > 0 {
			patterns = append(patterns, extract.DefaultOnlineIgnore...)
			patterns = append(patterns, onlineIgnore...)
		}
		parser, err := extract.NewOnlineListParser(patterns)
		if err != nil {
			return err
		}
		online = parser.Parse(string(block))
	}

	logger := logging.New("bulletins")
	bulletins := store.NewBulletins(cfg.Storage.DataDir, logger)

	known := make(map[string]bool)
	for _, b := range bulletins.ReadAll() {
		known[b.Key()] = true
	}

	notifier := notify.New(cfg.Notify, logger)
	for i := range reports {
		reports[i].OnlineUsers = online
		r := reports[i]
		if r.IsWhack() && !known[r.Key()] {
			msg := fmt.Sprintf("911 Reported: %s %s %s %s", r.Time, r.Crime, r.Victim, r.Suspect)
			if err := notifier.Notify(context.Background(), msg); err != nil {
				logger.Warn("whack notification failed", "error", err)
			}
		}
	}

	added, err := bulletins.AppendUnique(reports)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Read %d report(s), %d online user(s), %d new\n", len(reports), len(online), added)
	return nil
}

func init() {
	rootCmd.AddCommand(bulletinsCmd)
	bulletinsCmd.AddCommand(bulletinsImportCmd, bulletinsCaptureCmd, bulletinsListCmd)

	for _, c := range []*cobra.Command{bulletinsImportCmd, bulletinsCaptureCmd} {
		c.Flags().StringVar(&onlineFile, "online", "", "pasted online list")
		c.Flags().StringSliceVar(&onlineIgnore, "ignore", nil, "extra glob patterns for online list lines to skip")
	}
	bulletinsImportCmd.Flags().StringVar(&registerFile, "register", "", "saved emergency register page")
	_ = bulletinsImportCmd.MarkFlagRequired("register")
}
