package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salpyeo/dream/pkg/cli"
)

var signUpCmd = &cobra.Command{
	Use:   "sign-up",
	Short: "Register a new user with the function app",
	Long: `Register a new user and print its id. Store the id in a context with
"dream config add-context --user-id".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := funcAppClient()
		if err != nil {
			return err
		}
		id, err := client.SignUp(context.Background())
		if err != nil {
			return err
		}
		return outputResult(map[string]string{"uuid": id})
	},
}

var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Images and greetings generated by the function app",
}

var mediaImageCmd = &cobra.Command{
	Use:   "image [prompt]",
	Short: "Generate an image",
	Long: `Generate an image for the prompt. Without a prompt the service uses its
default greeting picture.

Examples:
  dream media image "손을 흔드는 할머니" -o hello.png`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := funcAppClient()
		if err != nil {
			return err
		}
		img, err := client.CreateImage(context.Background(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return outputRaw(img)
	},
}

var mediaMessageCmd = &cobra.Command{
	Use:   "message [text]",
	Short: "Synthesize and store the morning greeting",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := funcAppClient()
		if err != nil {
			return err
		}
		msg, err := client.SetMessage(context.Background(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		cli.PrintSuccess("%s", msg)
		return nil
	},
}

var mediaAudioCmd = &cobra.Command{
	Use:   "audio [name]",
	Short: "Download a stored audio file",
	Long: `Download a stored audio file, the morning greeting by default.

Examples:
  dream media audio -o good_morning.wav`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := funcAppClient()
		if err != nil {
			return err
		}
		var name string
		if len(args) == 1 {
			name = args[0]
		}
		data, err := client.GetAudioFile(context.Background(), name)
		if err != nil {
			return err
		}
		return outputRaw(data)
	},
}

// outputRaw writes data unchanged to -o or stdout.
func outputRaw(data []byte) error {
	return cli.Output(data, cli.OutputOptions{Format: cli.FormatRaw, File: outputFile})
}

func init() {
	mediaCmd.AddCommand(mediaImageCmd)
	mediaCmd.AddCommand(mediaMessageCmd)
	mediaCmd.AddCommand(mediaAudioCmd)
}
