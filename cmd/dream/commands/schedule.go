package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salpyeo/dream/pkg/cli"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Schedules extracted by the function app",
}

var scheduleProcessCmd = &cobra.Command{
	Use:   "process <answer>...",
	Short: "Extract schedules from the assistant's answers",
	Long: `Send the assistant's answers to the function app, which decides whether
they mention a schedule and, if so, re-extracts the schedule list from the
whole chat history.

Examples:
  dream schedule process "내일 10시에 병원 가시는 거 잊지 마세요."`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := funcAppClient()
		if err != nil {
			return err
		}
		res, err := client.ProcessSchedule(context.Background(), args)
		if err != nil {
			return err
		}
		if !res.Mentioned {
			cli.PrintInfo("No schedule mentioned")
			return nil
		}
		return outputResult(res.Items)
	},
}

var scheduleSetCmd = &cobra.Command{
	Use:   "set <text>",
	Short: "Store a free-text schedule",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := funcAppClient()
		if err != nil {
			return err
		}
		msg, err := client.SetSchedule(context.Background(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		cli.PrintSuccess("%s", msg)
		return nil
	},
}

var scheduleTodoFromDays int

var scheduleTodoCmd = &cobra.Command{
	Use:   "todo",
	Short: "List stored schedule items",
	Long: `List the stored schedule items.

Examples:
  dream schedule todo
  dream schedule todo --from-days 7 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if scheduleTodoFromDays < 0 {
			return fmt.Errorf("--from-days must not be negative")
		}
		client, err := funcAppClient()
		if err != nil {
			return err
		}
		items, err := client.GetTodo(context.Background(), scheduleTodoFromDays)
		if err != nil {
			return err
		}
		return outputResult(items)
	},
}

func init() {
	scheduleTodoCmd.Flags().IntVar(&scheduleTodoFromDays, "from-days", 0, "Drop items dated more than N days ago")

	scheduleCmd.AddCommand(scheduleProcessCmd)
	scheduleCmd.AddCommand(scheduleSetCmd)
	scheduleCmd.AddCommand(scheduleTodoCmd)
}
