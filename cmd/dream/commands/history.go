package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salpyeo/dream/pkg/assistant"
	"github.com/salpyeo/dream/pkg/cli"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Chat history stored in the function app",
}

var historyGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the chat history",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := funcAppClient()
		if err != nil {
			return err
		}
		hist, err := client.GetChatHistory(context.Background())
		if err != nil {
			return err
		}
		return outputResult(hist)
	},
}

var historySaveCmd = &cobra.Command{
	Use:   "save [user-message] [bot-message]",
	Short: "Append one turn to the chat history",
	Long: `Append one turn to the chat history.

The turn is given as two arguments or as a file with -f:
  userMessage: 내일 병원 가요
  botMessage: 몇 시에 가세요?

Examples:
  dream history save "내일 병원 가요" "몇 시에 가세요?"
  dream history save -f turn.yaml`,
	Args: cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var turn assistant.Turn
		switch {
		case len(args) == 2:
			turn = assistant.Turn{UserMessage: args[0], BotMessage: args[1]}
		case inputFile != "":
			var req struct {
				UserMessage string `yaml:"userMessage" json:"userMessage"`
				BotMessage  string `yaml:"botMessage" json:"botMessage"`
			}
			if err := cli.LoadRequest(inputFile, &req); err != nil {
				return err
			}
			turn = assistant.Turn{UserMessage: req.UserMessage, BotMessage: req.BotMessage}
		default:
			return fmt.Errorf("give the user and bot messages as arguments or with -f")
		}

		client, err := funcAppClient()
		if err != nil {
			return err
		}
		if err := client.SaveChatHistory(context.Background(), turn.UserMessage, turn.BotMessage); err != nil {
			return err
		}
		cli.PrintSuccess("Turn saved")
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyGetCmd)
	historyCmd.AddCommand(historySaveCmd)
}
