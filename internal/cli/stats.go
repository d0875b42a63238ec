package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show memory graph statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, eng, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		defer eng.Close()

		s, err := eng.GetStats()
		if err != nil {
			return err
		}

		fmt.Printf("memories: %d (graph: %d)\n", s.Store.TotalMemories, s.GraphNodes)
		for status, n := range s.Store.ByStatus {
			fmt.Printf("  %-9s %d\n", status, n)
		}
		fmt.Printf("links: %d\n", s.Store.TotalLinks)
		fmt.Printf("avg importance: %.2f\n", s.Store.AvgImportance)
		fmt.Printf("schema: v%d\n", s.Store.SchemaVersion)
		return nil
	},
}

var decayCmd = &cobra.Command{
	Use:   "decay",
	Short: "Run one importance-decay sweep now",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, eng, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		defer eng.Close()

		n, err := eng.RunDecay()
		if err != nil {
			return err
		}
		fmt.Printf("adjusted %d memories\n", n)
		return nil
	},
}
