package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	processAssistant string
	processContext   string
	processSession   string
	processJSON      bool
)

var processCmd = &cobra.Command{
	Use:   "process [user text]",
	Short: "Run one interaction through the memory engine",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processAssistant, "assistant", "", "assistant turn text")
	processCmd.Flags().StringVar(&processContext, "context", "", "interaction context")
	processCmd.Flags().StringVar(&processSession, "session", "", "session reference")
	processCmd.Flags().BoolVar(&processJSON, "json", false, "emit the full result as JSON")
}

func runProcess(cmd *cobra.Command, args []string) error {
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

	result, err := eng.ProcessInteraction(cmd.Context(), args[0], processAssistant, processContext, processSession)
	if err != nil {
		return err
	}

	if processJSON {
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	fmt.Printf("facts: %d\n", result.FactsExtracted)
	for _, d := range result.Decisions {
		fmt.Printf("  %-6s %s", d.Action, d.Fact.Content)
		if d.Reasoning != "" {
			fmt.Printf("  (%s)", d.Reasoning)
		}
		fmt.Println()
	}
	fmt.Printf("took %s\n", result.ProcessingTime.Round(time.Millisecond))
	return nil
}
