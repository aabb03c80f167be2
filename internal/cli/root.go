package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/casework/internal/logging"
	"github.com/ppiankov/casework/internal/model"
)

const version = "casework v0.3.0"

var (
	cfgFile string
	envFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "casework",
	Short: "casework - resolves in-game criminal cases one at a time",
	Long: `casework drives the police screens of the game through a browser session.

Each invocation opens one case, collects its evidence, names a suspect
when the evidence and the supporting lookups allow it, and then closes,
buries or returns the case. It never guesses between candidates.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logging.Init(logging.ParseLevel(level), cfg.Logging.Format, os.Stderr)
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.casework/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("data-dir", "", "directory of the JSON stores (overrides storage.data_dir)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("storage.data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in the dotenv file, config file and ENV variables
func initConfig() {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", envFile, err)
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.casework")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// CASEWORK_POLICE_DO_FORENSICS=true overrides police.do_forensics
	viper.SetEnvPrefix("CASEWORK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := registerDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults teaches viper every config key so environment
// overrides reach Unmarshal even when the file does not mention them
func registerDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	var walk func(prefix string, node map[string]any)
	walk = func(prefix string, node map[string]any) {
		for k, val := range node {
			key := prefix + k
			if child, ok := val.(map[string]any); ok {
				walk(key+".", child)
				continue
			}
			v.SetDefault(key, val)
		}
	}
	walk("", tree)

	for _, key := range optionalKeys {
		v.SetDefault(key, "")
	}
	return nil
}

// optionalKeys are omitted from the marshalled defaults when empty
var optionalKeys = []string{
	"browser.storage_state",
	"browser.http_proxy",
	"browser.proxy_bypass",
	"notify.webhook_url",
	"metrics.textfile",
}

// loadConfig merges defaults, config file, environment and flags, then validates
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
