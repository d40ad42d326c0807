package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salpyeo/dream/pkg/cli"
	"github.com/salpyeo/dream/pkg/funcapp"
	"github.com/salpyeo/dream/pkg/realtime"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Manage dream CLI configuration.

Configuration is stored in ~/.dream/dream/config.yaml.
Multiple contexts can be defined for different deployments.`,
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add a new context",
	Long: `Add a new context, or replace an existing one.

Examples:
  dream config add-context home --realtime-url https://assistant.example.com
  dream config add-context home --realtime-url https://assistant.example.com \
      --funcapp-url https://funcapp.example.com --master-key SECRET --transcribe
  dream config add-context azure --direct --azure-endpoint https://res.openai.azure.com \
      --api-key KEY --deployment gpt-4o-realtime-preview`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		flags := cmd.Flags()
		realtimeURL, _ := flags.GetString("realtime-url")
		direct, _ := flags.GetBool("direct")
		azureEndpoint, _ := flags.GetString("azure-endpoint")
		apiKey, _ := flags.GetString("api-key")
		deployment, _ := flags.GetString("deployment")
		funcappURL, _ := flags.GetString("funcapp-url")
		masterKey, _ := flags.GetString("master-key")
		userID, _ := flags.GetString("user-id")
		transcribe, _ := flags.GetBool("transcribe")
		language, _ := flags.GetString("language")
		sampleRate, _ := flags.GetInt("input-rate")
		stereo, _ := flags.GetBool("input-stereo")

		ctx := &cli.Context{
			Realtime: realtime.Endpoint{
				BaseURL:       realtimeURL,
				Direct:        direct,
				AzureEndpoint: azureEndpoint,
				APIKey:        apiKey,
				Deployment:    deployment,
			},
			FuncApp: funcapp.Config{
				MasterKey: masterKey,
				BaseURL:   funcappURL,
				UserID:    userID,
			},
		}
		ctx.Name = name
		ctx.InputFormat.SampleRate = sampleRate
		ctx.InputFormat.Stereo = stereo
		if transcribe {
			ctx.Transcription = &cli.Transcription{Enabled: true, Language: language}
		}
		if err := ctx.Validate(); err != nil {
			return err
		}

		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.AddContext(name, ctx); err != nil {
			return err
		}
		cli.PrintSuccess("Context '%s' added successfully", name)
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.DeleteContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Context '%s' deleted", args[0])
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the default context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.UseContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Switched to context '%s'", args[0])
		return nil
	},
}

var configGetContextCmd = &cobra.Command{
	Use:   "get-context",
	Short: "Show the current context",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if cfg.CurrentContext == "" {
			fmt.Println("No current context set")
		} else {
			fmt.Println(cfg.CurrentContext)
		}
		return nil
	},
}

var configListContextsCmd = &cobra.Command{
	Use:   "list-contexts",
	Short: "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		names := cfg.ListContexts()
		if len(names) == 0 {
			fmt.Println("No contexts configured")
			return nil
		}
		for _, name := range names {
			marker := "  "
			if name == cfg.CurrentContext {
				marker = "* "
			}
			fmt.Printf("%s%s\n", marker, name)
		}
		return nil
	},
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "View full configuration, secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		view := cli.Config{
			CurrentContext: cfg.CurrentContext,
			Contexts:       make(map[string]*cli.Context, len(cfg.Contexts)),
		}
		for name, ctx := range cfg.Contexts {
			view.Contexts[name] = ctx.Masked()
		}
		return outputResult(&view)
	},
}

func init() {
	f := configAddContextCmd.Flags()
	f.StringP("realtime-url", "u", "", "Realtime middle tier base URL")
	f.Bool("direct", false, "Connect to Azure OpenAI directly, bypassing the middle tier")
	f.String("azure-endpoint", "", "Azure OpenAI endpoint (--direct)")
	f.StringP("api-key", "k", "", "Azure OpenAI key (--direct)")
	f.String("deployment", "", "Realtime deployment name (--direct)")
	f.String("funcapp-url", "", "Function app base URL")
	f.String("master-key", "", "Function app access key")
	f.String("user-id", "", "User id sent to the function app")
	f.Bool("transcribe", false, "Transcribe the user's audio")
	f.String("language", "", "Transcription language (default ko-KR)")
	f.Int("input-rate", 0, "Sample rate of recorded input (default 24000)")
	f.Bool("input-stereo", false, "Recorded input is stereo")

	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configGetContextCmd)
	configCmd.AddCommand(configListContextsCmd)
	configCmd.AddCommand(configViewCmd)
}
