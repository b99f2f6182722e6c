package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestCreateRootCommand(t *testing.T) {
	resetViper(t)

	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	if cmd.Use != "markanki" {
		t.Errorf("Expected Use to be 'markanki', got %s", cmd.Use)
	}

	if !strings.Contains(cmd.Short, "Anki flashcards") {
		t.Errorf("Expected Short description to mention Anki flashcards, got %q", cmd.Short)
	}

	for _, name := range []string{"config", "output", "cache", "batch-dir", "batch-size", "format", "deck"} {
		t.Run("flag_"+name, func(t *testing.T) {
			var flag *pflag.Flag = cmd.PersistentFlags().Lookup(name)
			if flag == nil {
				t.Errorf("Expected persistent flag %s to exist", name)
			}
		})
	}
}

func TestSetupFlags(t *testing.T) {
	resetViper(t)

	cmd := &cobra.Command{}
	flags := NewFlags()
	setupFlags(cmd, flags)

	batchSize := cmd.PersistentFlags().Lookup("batch-size")
	if batchSize == nil {
		t.Fatal("batch-size flag not found")
	}
	if batchSize.DefValue != "30" {
		t.Errorf("Expected default batch size 30, got %s", batchSize.DefValue)
	}

	format := cmd.PersistentFlags().Lookup("format")
	if format == nil {
		t.Fatal("format flag not found")
	}
	if format.Shorthand != "f" || format.DefValue != "tsv" {
		t.Errorf("Unexpected format flag: -%s default %s", format.Shorthand, format.DefValue)
	}
}

func TestBindFlagsToViper(t *testing.T) {
	resetViper(t)

	cmd := &cobra.Command{}
	flags := NewFlags()
	setupFlags(cmd, flags)

	cmd.PersistentFlags().Set("output", "/test/output")
	cmd.PersistentFlags().Set("format", "apkg")
	cmd.PersistentFlags().Set("batch-size", "5")

	if viper.GetString("output.directory") != "/test/output" {
		t.Errorf("Expected output.directory to be /test/output, got %s", viper.GetString("output.directory"))
	}
	if viper.GetString("anki.format") != "apkg" {
		t.Errorf("Expected anki.format to be apkg, got %s", viper.GetString("anki.format"))
	}
	if viper.GetInt("batch.size") != 5 {
		t.Errorf("Expected batch.size to be 5, got %d", viper.GetInt("batch.size"))
	}
}

func TestAddSubcommandFlags(t *testing.T) {
	resetViper(t)
	flags := NewFlags()

	process := &cobra.Command{}
	AddProcessFlags(process, flags)
	if process.Flags().Lookup("pattern") == nil {
		t.Error("process command is missing --pattern")
	}

	// Without --pattern a config value is kept
	flags.Pattern = "*.txt"
	process.PreRun(process, nil)
	if flags.Pattern != "*.txt" {
		t.Errorf("Pattern = %q, want *.txt", flags.Pattern)
	}

	// An explicit --pattern survives a config value applied later
	if err := process.Flags().Set("pattern", "*.markdown"); err != nil {
		t.Fatal(err)
	}
	flags.Pattern = "*.txt"
	process.PreRun(process, nil)
	if flags.Pattern != "*.markdown" {
		t.Errorf("Pattern = %q, want *.markdown", flags.Pattern)
	}

	translate := &cobra.Command{}
	AddTranslateFlags(translate, flags)
	for _, name := range []string{"provider", "openai-model", "gemini-model", "target-language", "out", "save"} {
		if translate.Flags().Lookup(name) == nil {
			t.Errorf("translate command is missing --%s", name)
		}
	}
}

func TestInitConfigAndApply(t *testing.T) {
	resetViper(t)

	cfgPath := filepath.Join(t.TempDir(), "markanki.yaml")
	content := `output:
  directory: /test/output
batch:
  size: 12
translator:
  provider: gemini
  openai_key: config-key
`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}

	flags := NewFlags()
	cmd := CreateRootCommand(flags)
	AddTranslateFlags(cmd, flags)

	// Command line wins over the config file
	if err := cmd.PersistentFlags().Set("format", "apkg"); err != nil {
		t.Fatal(err)
	}

	InitConfig(cfgPath)
	ApplyConfig(flags)

	if flags.OutputDir != "/test/output" {
		t.Errorf("OutputDir = %q, want /test/output", flags.OutputDir)
	}
	if flags.BatchSize != 12 {
		t.Errorf("BatchSize = %d, want 12", flags.BatchSize)
	}
	if flags.Provider != "gemini" {
		t.Errorf("Provider = %q, want gemini", flags.Provider)
	}
	if flags.Format != "apkg" {
		t.Errorf("Format = %q, want apkg", flags.Format)
	}
	if flags.Pattern != "*.md" {
		t.Errorf("Pattern = %q, want default *.md", flags.Pattern)
	}
}

func TestPatternPrecedence(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "markanki.yaml")
	if err := os.WriteFile(cfgPath, []byte("extract:\n  pattern: \"*.txt\"\n"), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "config file", args: []string{"process"}, want: "*.txt"},
		{name: "explicit flag", args: []string{"process", "--pattern", "*.markdown"}, want: "*.markdown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			flags := NewFlags()
			root := CreateRootCommand(flags)

			// Same order as main: flags are parsed, then config is applied
			root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
				InitConfig(cfgPath)
				ApplyConfig(flags)
			}

			var got string
			process := &cobra.Command{
				Use: "process",
				RunE: func(cmd *cobra.Command, args []string) error {
					got = flags.Pattern
					return nil
				},
			}
			AddProcessFlags(process, flags)
			root.AddCommand(process)

			root.SetArgs(tt.args)
			if err := root.Execute(); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Pattern = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInitConfig_EnvPrefix(t *testing.T) {
	resetViper(t)

	InitConfig(filepath.Join(t.TempDir(), "missing.yaml"))

	t.Setenv("MARKANKI_TEST_VAR", "test-value")
	if viper.GetString("test_var") != "test-value" {
		t.Error("Environment variable not properly loaded")
	}
}

func TestGetOpenAIKey(t *testing.T) {
	tests := []struct {
		name      string
		envKey    string
		configKey string
		expected  string
	}{
		{name: "from environment", envKey: "env-test-key", configKey: "config-test-key", expected: "env-test-key"},
		{name: "from config when no env", configKey: "config-test-key", expected: "config-test-key"},
		{name: "empty when neither set", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			t.Setenv("OPENAI_API_KEY", tt.envKey)

			if tt.configKey != "" {
				viper.Set("translator.openai_key", tt.configKey)
			}

			if got := GetOpenAIKey(); got != tt.expected {
				t.Errorf("GetOpenAIKey() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetGeminiKey(t *testing.T) {
	resetViper(t)
	t.Setenv("GEMINI_API_KEY", "")
	viper.Set("translator.gemini_key", "config-gemini")

	if got := GetGeminiKey(); got != "config-gemini" {
		t.Errorf("GetGeminiKey() = %q, want config-gemini", got)
	}

	t.Setenv("GEMINI_API_KEY", "env-gemini")
	if got := GetGeminiKey(); got != "env-gemini" {
		t.Errorf("GetGeminiKey() = %q, want env-gemini", got)
	}
}

func TestApplyConfig_NestedEnv(t *testing.T) {
	resetViper(t)
	InitConfig(filepath.Join(t.TempDir(), "missing.yaml"))

	t.Setenv("MARKANKI_BATCH_DIRECTORY", "/env/batches")

	flags := NewFlags()
	ApplyConfig(flags)

	if flags.BatchDir != "/env/batches" {
		t.Errorf("BatchDir = %q, want /env/batches", flags.BatchDir)
	}
}
