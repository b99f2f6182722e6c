package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/markanki/internal"
	"codeberg.org/snonux/markanki/internal/archive"
	"codeberg.org/snonux/markanki/internal/cli"
	"codeberg.org/snonux/markanki/internal/models"
	"codeberg.org/snonux/markanki/internal/processor"
	"codeberg.org/snonux/markanki/internal/translation"
)

// withProcessor opens the processor for the duration of fn and flushes the
// cache afterwards
func withProcessor(flags *cli.Flags, fn func(p *processor.Processor) error) error {
	proc, err := processor.NewProcessor(flags, os.Stdout, os.Stderr)
	if err != nil {
		return err
	}

	runErr := fn(proc)
	if err := proc.Close(); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func newProcessCommand(flags *cli.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <document-or-directory>",
		Short: "Extract marked words and write translation batches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProcessor(flags, func(p *processor.Processor) error {
				_, err := p.Process(internal.ExpandHome(args[0]))
				return err
			})
		},
	}
	cli.AddProcessFlags(cmd, flags)
	return cmd
}

func newSaveCommand(flags *cli.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <batch-file> <translation-file>",
		Short: "Save a translated batch to the cache and reconcile its set",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProcessor(flags, func(p *processor.Processor) error {
				_, err := p.SaveAndReconcile(internal.ExpandHome(args[0]), internal.ExpandHome(args[1]))
				return err
			})
		},
	}
	cli.AddProcessFlags(cmd, flags)
	return cmd
}

func newStatusCommand(flags *cli.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <batch-file>",
		Short: "Show how far the set of a batch file is translated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProcessor(flags, func(p *processor.Processor) error {
				_, err := p.Status(internal.ExpandHome(args[0]))
				return err
			})
		},
	}
	cli.AddProcessFlags(cmd, flags)
	return cmd
}

func newTranslateCommand(flags *cli.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <batch-file>",
		Short: "Translate a batch file with an LLM provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batchFile := internal.ExpandHome(args[0])

			translator, err := processor.NewTranslator(cmd.Context(), flags)
			if err != nil {
				return err
			}

			return withProcessor(flags, func(p *processor.Processor) error {
				out, err := p.Translate(cmd.Context(), batchFile, internal.ExpandHome(flags.TranslateOut), translator)
				if err != nil {
					return err
				}
				if !flags.TranslateSave {
					fmt.Printf("\nReview the result, then run: markanki save %s %s\n", batchFile, out)
					return nil
				}
				_, err = p.SaveAndReconcile(batchFile, out)
				return err
			})
		},
	}
	cli.AddTranslateFlags(cmd, flags)
	cli.AddProcessFlags(cmd, flags)
	return cmd
}

func newCacheCommand(flags *cli.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and edit the translation cache",
	}

	openStore := func() *translation.Store {
		return translation.OpenStore(internal.ExpandHome(flags.CacheFile), os.Stderr)
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStore()
			printStats(store)
			return nil
		},
	}

	get := &cobra.Command{
		Use:   "get <word>",
		Short: "Show the cached translation of a word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, ok := openStore().Get(args[0])
			if !ok {
				return fmt.Errorf("no cached translation for %q", args[0])
			}
			data, err := json.MarshalIndent(entry, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode entry: %w", err)
			}
			fmt.Println(string(data))
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <word> <translation> [sentence] [sentence-translation]",
		Short: "Add or overwrite a cached translation",
		Args:  cobra.RangeArgs(2, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sentence, sentenceTranslation string
			if len(args) > 2 {
				sentence = args[2]
			}
			if len(args) > 3 {
				sentenceTranslation = args[3]
			}

			res := openStore().Add(args[0], args[1], sentence, sentenceTranslation)
			if res.Err != nil {
				return fmt.Errorf("failed to add %q: %w", res.Key, res.Err)
			}
			if res.Changed {
				fmt.Printf("Saved %q\n", res.Key)
			} else {
				fmt.Printf("%q is unchanged\n", res.Key)
			}
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached translation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !flags.Force {
				return fmt.Errorf("refusing to clear the cache without --force")
			}
			store := openStore()
			n := store.Len()
			if res := store.Clear(); res.Err != nil {
				return res.Err
			}
			fmt.Printf("Cleared %d cached words\n", n)
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&flags.Force, "force", false, "Really clear the cache")

	importCmd := &cobra.Command{
		Use:   "import <tsv-file>...",
		Short: "Import word/translation/sentence/sentence-translation rows",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStore()

			var failed int
			for _, path := range args {
				res, err := translation.ImportTSV(internal.ExpandHome(path), store)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error importing %s: %v\n", path, err)
					failed++
					continue
				}
				fmt.Printf("  ✓ %s: %d imported, %d skipped\n", path, res.Imported, res.Skipped)
				if res.Failed > 0 {
					fmt.Fprintf(os.Stderr, "  ✗ %s: %d rows not written to disk\n", path, res.Failed)
					failed++
				}
			}

			printStats(store)
			if failed > 0 {
				return fmt.Errorf("%d of %d files had errors", failed, len(args))
			}
			return nil
		},
	}

	cmd.AddCommand(stats, get, add, clearCmd, importCmd)
	return cmd
}

func printStats(store *translation.Store) {
	stats := store.Stats()
	fmt.Printf("Cache file: %s\n", store.Path())
	fmt.Printf("Words: %d\n", stats.Words)
	fmt.Printf("Sentence examples: %d\n", stats.Examples)
}

func newArchiveCommand(flags *cli.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <set-key>",
		Short: "Move the batch and translation files of a set into the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, moved, err := archive.ArchiveBatches(internal.ExpandHome(flags.BatchDir), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Archived %d files to %s\n", moved, dir)
			return nil
		},
	}
}

func newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the OpenAI chat models usable for translation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return models.NewLister(cli.GetOpenAIKey()).ListChatModels(cmd.Context(), os.Stdout)
		},
	}
}
