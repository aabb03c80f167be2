package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/casework/internal/cache"
	"github.com/ppiankov/casework/internal/logging"
	"github.com/ppiankov/casework/internal/model"
	"github.com/ppiankov/casework/internal/resolve"
	"github.com/ppiankov/casework/internal/store"
)

var (
	journalLimit int
	cooldownFor  time.Duration
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Inspect cases deferred for forensics",
}

var pendingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cases waiting for the action resource",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pending, err := openPending()
		if err != nil {
			return err
		}
		ids := make([]int, 0)
		for id := range pending.Read() {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			fmt.Println(id)
		}
		fmt.Fprintf(os.Stderr, "%d pending case(s)\n", len(ids))
		return nil
	},
}

var pendingClearCmd = &cobra.Command{
	Use:   "clear [case-id]...",
	Short: "Remove cases from the pending set, or empty it",
	RunE: func(cmd *cobra.Command, args []string) error {
		pending, err := openPending()
		if err != nil {
			return err
		}
		if len(args) == 0 {
			return pending.Clear()
		}
		for _, arg := range args {
			id, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("invalid case id %q", arg)
			}
			if err := pending.Remove(id); err != nil {
				return err
			}
		}
		return nil
	},
}

func openPending() (*store.PendingForensics, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.NewPendingForensics(cfg.Storage.DataDir, logging.New("pending")), nil
}

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Read and edit the player knowledge base",
	Long: `The knowledge base is shared with the other game automations. Every
player record maps field names to strings: home_city plus one cooldown
timestamp per crime type.`,
}

var identityGetCmd = &cobra.Command{
	Use:   "get [player] [field]",
	Short: "Print a player record, one field, or all players",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := openIdentities()
		if err != nil {
			return err
		}
		switch len(args) {
		case 0:
			for _, name := range ids.Players() {
				fmt.Println(name)
			}
		case 1:
			id, ok := ids.Identity(args[0])
			if !ok {
				return fmt.Errorf("unknown player %q", args[0])
			}
			fmt.Printf("name: %s\n", id.Name)
			if id.HomeCity != "" {
				fmt.Printf("%s: %s\n", model.HomeCityKey, id.HomeCity)
			}
			crimes := make([]string, 0, len(id.Cooldowns))
			for crime := range id.Cooldowns {
				crimes = append(crimes, string(crime))
			}
			slices.Sort(crimes)
			for _, crime := range crimes {
				fmt.Printf("%s: %s\n", crime, id.Cooldowns[model.CrimeType(crime)].Format(model.CooldownLayout))
			}
		default:
			v, ok := ids.Get(args[0], args[1])
			if !ok {
				return fmt.Errorf("no %s for %s", args[1], args[0])
			}
			fmt.Println(v)
		}
		return nil
	},
}

var identitySetCmd = &cobra.Command{
	Use:   "set <player> <field> [value]",
	Short: "Set a field; with --cooldown the value is now plus the duration",
	Example: `  casework identity set Alice home_city Detroit
  casework identity set Alice mugging --cooldown 30m`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := openIdentities()
		if err != nil {
			return err
		}
		if cooldownFor > 0 {
			return ids.SetCooldown(args[0], model.CrimeType(args[1]), time.Now().Add(cooldownFor))
		}
		if len(args) != 3 {
			return fmt.Errorf("a value or --cooldown is required")
		}
		return ids.Set(args[0], args[1], args[2])
	},
}

var identityDeleteCmd = &cobra.Command{
	Use:   "delete <player>",
	Short: "Delete a player record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := openIdentities()
		if err != nil {
			return err
		}
		return ids.Delete(args[0])
	},
}

func openIdentities() (*store.Identities, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.NewIdentities(cfg.Storage.DataDir, logging.New("identities")), nil
}

var journalCmd = &cobra.Command{
	Use:   "journal [case-id]",
	Short: "Show settled cases, most recent first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Storage.Journal == "" {
			return fmt.Errorf("journal disabled (storage.journal is empty)")
		}

		ctx := context.Background()
		journal, err := store.OpenJournal(ctx, cfg.Storage.Journal)
		if err != nil {
			return err
		}
		defer func() { _ = journal.Close() }()

		var entries []store.JournalEntry
		if len(args) == 1 {
			id, convErr := strconv.Atoi(args[0])
			if convErr != nil {
				return fmt.Errorf("invalid case id %q", args[0])
			}
			entries, err = journal.ForCase(ctx, id)
		} else {
			entries, err = journal.Recent(ctx, journalLimit)
		}
		if err != nil {
			return err
		}

		for _, e := range entries {
			fmt.Printf("%s  #%-8d %-9s %-16s %-10s %s\n",
				e.CreatedAt.Local().Format(time.DateTime), e.CaseID, e.Disposition, e.Suspect, e.Source, e.Reason)
		}
		return nil
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the phonebook search cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [term]...",
	Short: "Forget cached phonebook searches, all of them or the given terms",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		c := cache.NewLayeredCache(cfg.Phonebook.MemoryTTL, filepath.Join(cfg.Storage.DataDir, "cache"), cfg.Phonebook.DiskTTL)
		if len(args) == 0 {
			return c.Clear()
		}
		for _, term := range args {
			if err := c.Delete(resolve.PhonebookCacheKey(term)); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pendingCmd, identityCmd, journalCmd, cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	pendingCmd.AddCommand(pendingListCmd, pendingClearCmd)
	identityCmd.AddCommand(identityGetCmd, identitySetCmd, identityDeleteCmd)

	identitySetCmd.Flags().DurationVar(&cooldownFor, "cooldown", 0, "store now plus this duration as a cooldown timestamp")
	journalCmd.Flags().IntVar(&journalLimit, "limit", 20, "number of entries to show")
}
