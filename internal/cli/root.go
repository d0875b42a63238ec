package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recallhq/recall/internal/config"
	"github.com/recallhq/recall/internal/engine"
	"github.com/recallhq/recall/internal/facts"
	"github.com/recallhq/recall/internal/graph"
	"github.com/recallhq/recall/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Personal knowledge that persists across conversations",
	Long:  "Recall extracts facts from dialogue, stores them in an evolving memory graph, and serves them back when they matter. Single Go binary.",
}

var configPath string

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.recall/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(decayCmd)
}

// loadConfig resolves the config file, preferring the --config flag.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Default(), err
		}
	}
	return config.Load(path)
}

// openEngine opens the database and builds an engine from the config.
// The caller closes both.
func openEngine(cfg config.Config) (*store.DB, *engine.Engine, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, nil, fmt.Errorf("resolve db path: %w", err)
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	extractor := facts.NewExtractor()
	if cfg.NLP.URL != "" && facts.ProbeEnricher(cfg.NLP.URL) {
		extractor = facts.NewEnrichedExtractor(facts.NewHTTPEnricher(cfg.NLP.URL))
	}

	engCfg := engine.DefaultConfig()
	engCfg.SimilarityThreshold = cfg.Engine.SimilarityThreshold
	engCfg.UpdateThreshold = cfg.Engine.UpdateThreshold
	engCfg.DeleteThreshold = cfg.Engine.DeleteThreshold
	engCfg.Linking = graph.Config{
		LinkingThreshold:  cfg.Engine.LinkingThreshold,
		MaxLinksPerMemory: cfg.Engine.MaxLinksPerMemory,
		LinkConfidence:    graph.DefaultConfig().LinkConfidence,
	}

	eng, err := engine.New(db, extractor, engCfg)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("build engine: %w", err)
	}
	return db, eng, nil
}
