package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/markanki/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "markanki",
		Short: "Anki flashcards from vocabulary marked in markdown",
		Long: `markanki turns words marked as **bold** in markdown notes into Anki
flashcards, translating every distinct word only once.

Words already in the translation cache are used directly. New words are
written to batch files for an external translation step; saving each
translated batch fills the cache and produces the deck once every batch
of a set is done.

Examples:
  markanki process chapter1.md                   # Extract and classify one document
  markanki process notes/                        # All *.md files of a directory
  markanki save /tmp/chapter1_to_translate.json t.json
  markanki translate /tmp/chapter1_to_translate.json --save`,
		Version:      internal.Version,
		SilenceUsage: true,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.markanki.yaml)")
	pf.StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Directory for generated Anki files")
	pf.StringVar(&flags.CacheFile, "cache", flags.CacheFile, "Translation cache file")
	pf.StringVar(&flags.BatchDir, "batch-dir", flags.BatchDir, "Directory for translation batch files")
	pf.IntVar(&flags.BatchSize, "batch-size", flags.BatchSize, "Maximum words per translation batch")
	pf.StringVarP(&flags.Format, "format", "f", flags.Format, "Anki file format: tsv or apkg")
	pf.StringVar(&flags.DeckName, "deck", "", "Deck name (default: document or directory name)")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	viper.BindPFlag("output.directory", pf.Lookup("output"))
	viper.BindPFlag("cache.file", pf.Lookup("cache"))
	viper.BindPFlag("batch.directory", pf.Lookup("batch-dir"))
	viper.BindPFlag("batch.size", pf.Lookup("batch-size"))
	viper.BindPFlag("anki.format", pf.Lookup("format"))
	viper.BindPFlag("anki.deck", pf.Lookup("deck"))
}

// AddProcessFlags adds the flags of the process command
func AddProcessFlags(cmd *cobra.Command, flags *Flags) {
	// Several commands share the flag, so it cannot be bound to one viper
	// key. It writes to its own variable: ApplyConfig runs after parsing and
	// may set flags.Pattern from extract.pattern, then an explicit --pattern
	// is copied over it.
	var explicit string
	cmd.Flags().StringVar(&explicit, "pattern", flags.Pattern, "File pattern when processing a directory")

	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("pattern") {
			flags.Pattern = explicit
		}
	}
}

// AddTranslateFlags adds the flags of the translate command
func AddTranslateFlags(cmd *cobra.Command, flags *Flags) {
	cmd.Flags().StringVar(&flags.Provider, "provider", flags.Provider, "Translation provider: openai or gemini")
	cmd.Flags().StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI chat model")
	cmd.Flags().StringVar(&flags.GeminiModel, "gemini-model", flags.GeminiModel, "Gemini model")
	cmd.Flags().StringVar(&flags.TargetLanguage, "target-language", flags.TargetLanguage, "Language to translate into")
	cmd.Flags().StringVar(&flags.TranslateOut, "out", "", "Translation result file (default: <batch>_translation.json)")
	cmd.Flags().BoolVar(&flags.TranslateSave, "save", false, "Save the result to the cache and reconcile right away")

	viper.BindPFlag("translator.provider", cmd.Flags().Lookup("provider"))
	viper.BindPFlag("translator.openai_model", cmd.Flags().Lookup("openai-model"))
	viper.BindPFlag("translator.gemini_model", cmd.Flags().Lookup("gemini-model"))
	viper.BindPFlag("translator.target_language", cmd.Flags().Lookup("target-language"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".markanki" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".markanki")
	}

	// Environment variables
	viper.SetEnvPrefix("MARKANKI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// ApplyConfig copies values set in the config file, the environment or on
// the command line into flags. Unset keys keep the flag defaults.
func ApplyConfig(flags *Flags) {
	setString := func(key string, dst *string) {
		if viper.IsSet(key) {
			*dst = viper.GetString(key)
		}
	}

	setString("output.directory", &flags.OutputDir)
	setString("cache.file", &flags.CacheFile)
	setString("batch.directory", &flags.BatchDir)
	setString("anki.format", &flags.Format)
	setString("anki.deck", &flags.DeckName)
	setString("extract.pattern", &flags.Pattern)
	setString("translator.provider", &flags.Provider)
	setString("translator.openai_model", &flags.OpenAIModel)
	setString("translator.gemini_model", &flags.GeminiModel)
	setString("translator.target_language", &flags.TargetLanguage)

	if viper.IsSet("batch.size") {
		flags.BatchSize = viper.GetInt("batch.size")
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("translator.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("translator.gemini_key")
}
