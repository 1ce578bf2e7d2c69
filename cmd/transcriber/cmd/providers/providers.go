package providers

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"audio-transcriber/cmd/transcriber/cmd/common"
	"audio-transcriber/internal/app/api/provider"
	"audio-transcriber/internal/config"
)

var check bool

func init() {
	Cmd.Flags().BoolVar(&check, "check", false, "load the configured provider's model and release it again")
}

// Cmd represents the providers command
var Cmd = &cobra.Command{
	Use:   "providers",
	Short: "List the available transcription providers",
	Long: `List the registered transcription providers and their requirements.

With --check the configured provider is created and its model is opened and
closed once, which verifies binaries, API keys and model downloads.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := common.LoadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Resolve(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if err := list(out, cfg); err != nil {
			return err
		}
		if !check {
			return nil
		}

		logger, err := common.NewLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, stop := common.SignalContext(cmd.Context())
		defer stop()

		p, err := provider.Create(cfg.Engine, logger)
		if err != nil {
			return err
		}
		tr, err := p.Open(ctx)
		if err != nil {
			return err
		}
		if err := tr.Close(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%s: model %q opened and closed successfully\n", p.Name(), cfg.Engine.Model)
		return nil
	},
}

func list(out io.Writer, cfg *config.Config) error {
	for _, name := range provider.ListRegisteredProviders() {
		creator, err := provider.GetProviderCreator(name)
		if err != nil {
			return err
		}
		engine := cfg.Engine
		engine.Provider = name
		engine.Model = ""
		p, err := creator(engine, zap.NewNop())
		if err != nil {
			fmt.Fprintf(out, "  %-16s (unavailable: %v)\n", name, err)
			continue
		}

		info := p.Info()
		marker := " "
		if name == cfg.Engine.Provider {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-16s %-28s %-6s default model: %s%s\n",
			marker, name, info.DisplayName, info.Type, orDash(info.DefaultModel), requirements(info))
	}

	keys, err := config.GetAPIKeys()
	if err != nil {
		return err
	}
	if available := keys.Available(); len(available) > 0 {
		fmt.Fprintf(out, "\nAPI keys found for: %s\n", strings.Join(available, ", "))
	}
	return nil
}

func requirements(info provider.ProviderInfo) string {
	var req []string
	if info.RequiresBinary {
		req = append(req, "local runtime")
	}
	if info.RequiresAPIKey {
		req = append(req, "API key")
	}
	if info.RequiresInternet {
		req = append(req, "internet")
	}
	if len(req) == 0 {
		return ""
	}
	return " (needs " + strings.Join(req, ", ") + ")"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
