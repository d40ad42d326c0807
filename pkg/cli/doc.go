// Package cli provides the configuration, output and terminal styling shared
// by the dream command-line tool.
//
// Configuration is stored in ~/.dream/<app>/config.yaml as named contexts,
// similar to kubectl. Each context locates a realtime middle tier and,
// optionally, a function app:
//
//	current_context: home
//	contexts:
//	  home:
//	    realtime:
//	      base_url: https://assistant.example.com
//	    transcription:
//	      enabled: true
//	    funcapp:
//	      master_key: secret
//	      base_url: https://funcapp.example.com
//
// Example usage:
//
//	cfg, err := cli.LoadConfig("dream")
//	ctx, err := cfg.ResolveContext("")
//	if err := ctx.Validate(); err != nil { ... }
//	cli.Output(items, cli.OutputOptions{Format: cli.FormatJSON})
package cli
