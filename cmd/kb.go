package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rorical/MediBot/internal/config"
	"github.com/Rorical/MediBot/internal/knowledge"
	"github.com/Rorical/MediBot/internal/logging"
)

var kbLimit int

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Manage the local medical knowledge base",
}

var kbIngestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Index .md and .txt documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, store *knowledge.Store) error {
			n, err := store.Ingest(ctx, args...)
			if err != nil {
				return err
			}
			fmt.Printf("Indexed %d passages\n", n)
			return nil
		})
	},
}

var kbSearchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Show the passages a question would retrieve",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, store *knowledge.Store) error {
			hits, err := store.Search(ctx, strings.Join(args, " "), kbLimit)
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				fmt.Println("No matching passages")
				return nil
			}
			for i, p := range hits {
				fmt.Printf("%d. %s #%d\n%s\n\n", i+1, p.Source, p.Chunk, p.Content)
			}
			return nil
		})
	},
}

var kbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count indexed passages",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, store *knowledge.Store) error {
			st, err := store.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Passages: %d\nSources: %d\n", st.Passages, st.Sources)
			return nil
		})
	},
}

func withStore(fn func(ctx context.Context, store *knowledge.Store) error) error {
	loadDotEnv()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logging.SetupConsole(cfg.LogLevel, os.Stderr)

	store, err := openKnowledgeBase(cfg.Server)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(context.Background(), store)
}

func init() {
	kbSearchCmd.Flags().IntVarP(&kbLimit, "limit", "k", config.DefaultTopK, "maximum passages to show")
	kbCmd.AddCommand(kbIngestCmd, kbSearchCmd, kbStatsCmd)
	rootCmd.AddCommand(kbCmd)
}
