package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hanzify/internal/config"
)

// DefaultInput is converted when no argument is given outside interactive mode.
const DefaultInput = "tiandi"

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hanzify [pinyin]",
		Short: "Context-aware pinyin to Chinese converter",
		Long: `hanzify converts unsegmented pinyin into Chinese text with a language
model, using previously converted text as context.

Examples:
  hanzify                          # Convert the sample input "tiandi"
  hanzify zhongguoren              # Convert a single string
  hanzify -i                       # Read the input from stdin
  hanzify --provider gemini nihao  # Use the Gemini backend`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.hanzify.yaml)")

	cmd.Flags().BoolVarP(&flags.Interactive, "interactive", "i", false, "Prompt for the pinyin string on stdin")
	cmd.Flags().StringVar(&flags.Provider, "provider", "", "Generator backend: openai or gemini (default from GENERATOR_PROVIDER)")
	cmd.Flags().StringVar(&flags.Model, "model", "", "Model name (default from MODEL)")
	cmd.Flags().StringVar(&flags.BaseURL, "base-url", "", "OpenAI-compatible endpoint (default from UPSTREAM_BASE_URL)")
	cmd.Flags().Int64Var(&flags.Seed, "seed", 0, "Sampling seed for reproducible output")
	cmd.Flags().StringVar(&flags.Context, "context", "", "Initial conversion context")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	_ = viper.BindPFlag("generator.provider", cmd.Flags().Lookup("provider"))
	_ = viper.BindPFlag("generator.model", cmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("generator.base_url", cmd.Flags().Lookup("base-url"))
	_ = viper.BindPFlag("generator.seed", cmd.Flags().Lookup("seed"))
	_ = viper.BindPFlag("context.initial", cmd.Flags().Lookup("context"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".hanzify")
	}

	// HANZIFY_GENERATOR_MODEL and friends
	viper.SetEnvPrefix("HANZIFY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// ApplyOverrides layers flag, config file and HANZIFY_ values over cfg and
// validates the result.
func ApplyOverrides(cfg *config.Config) error {
	if v := strings.TrimSpace(viper.GetString("generator.provider")); v != "" {
		cfg.Provider = strings.ToLower(v)
	}
	if v := strings.TrimSpace(viper.GetString("generator.model")); v != "" {
		cfg.Model = v
	}
	if v := strings.TrimSpace(viper.GetString("generator.base_url")); v != "" {
		cfg.UpstreamBaseURL = strings.TrimRight(v, "/")
	}
	if viper.IsSet("generator.seed") {
		seed := viper.GetInt64("generator.seed")
		cfg.GenerationSeed = &seed
	}
	return cfg.Validate()
}

// InitialContext returns the context the session should start with.
func InitialContext() string {
	return viper.GetString("context.initial")
}
