package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recallhq/recall/internal/engine"
)

var (
	searchKind    string
	searchProject string
	searchMinImp  float64
	searchLimit   int
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search memories by ranked relevance",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchKind, "kind", "", "filter by memory kind")
	searchCmd.Flags().StringVar(&searchProject, "project", "", "filter by project ref")
	searchCmd.Flags().Float64Var(&searchMinImp, "min-importance", 0, "minimum importance")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "emit results as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	hits, err := eng.Search(engine.SearchQuery{
		Text:          strings.Join(args, " "),
		Kind:          searchKind,
		ProjectRef:    searchProject,
		MinImportance: searchMinImp,
		Limit:         searchLimit,
	})
	if err != nil {
		return err
	}

	if searchJSON {
		return json.NewEncoder(os.Stdout).Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, h := range hits {
		fmt.Printf("%.2f  [%s]  %s\n", h.Score, h.Memory.Kind, h.Memory.Content)
		if len(h.Links) > 0 {
			fmt.Printf("      %d links\n", len(h.Links))
		}
	}
	return nil
}

var (
	suggestProject string
	suggestMax     int
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [current input...]",
	Short: "Suggest relevant memories for the current input",
	Args:  cobra.MinimumNArgs(1),
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

		suggestions, err := eng.SuggestContext(strings.Join(args, " "), suggestProject, suggestMax)
		if err != nil {
			return err
		}
		for _, s := range suggestions {
			fmt.Printf("%.2f  %s\n", s.Relevance, s.Content)
		}
		return nil
	},
}

func init() {
	suggestCmd.Flags().StringVar(&suggestProject, "project", "", "filter by project ref")
	suggestCmd.Flags().IntVar(&suggestMax, "max", 5, "maximum suggestions")
}
