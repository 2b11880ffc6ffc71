package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Ask the shopping assistant",
	Long: `Answers a shopping question from catalog evidence.

Questions the catalog cannot support get a clarifying reply instead of a
guess. Without a configured LLM the answer lists the matching products.

Examples:
  sampann ask "what's the price of kaju 200g?"
  sampann ask compare chia seeds vs flax seeds`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := loadServices(cmd); err != nil {
		return err
	}
	if assistantService == nil {
		return errNotConfigured("assistant")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	answer, err := assistantService.Ask(ctx, strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputJSON(cmd, answer)
	}

	cmd.Println(answer.Text)
	if len(answer.Hits) > 0 {
		cmd.Println()
		cmd.Println(dimStyle.Sprint("Sources:"))
		for i := range answer.Hits {
			h := &answer.Hits[i]
			cmd.Printf("  [%d] %s", i+1, h.Title)
			if h.Link != "" {
				cmd.Printf(" %s", dimStyle.Sprint(h.Link))
			}
			cmd.Println()
		}
	}
	return nil
}
