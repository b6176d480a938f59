package main

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"katutubo-llm/config"
	"katutubo-llm/internal/tui"
	"katutubo-llm/pkg/client"
	"katutubo-llm/pkg/logger"
)

const rootLongDesc string = `Chat with the Katutubo LLM inference API.

Without a subcommand an interactive chat screen is opened. The service
address comes from URL (or APP_BASE_URL); outside production (PROD unset)
a local .env file is read first.

Examples:
  katutubo-chat
  katutubo-chat ask "Anong symptoms ng dengue?"
  katutubo-chat ping`

type rootCommander struct {
	style string
}

func newClient() (*client.Client, config.ClientConfig, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, cfg, err
	}
	return client.New(cfg.BaseURL, client.Options{
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay(),
		HealthTimeout:  cfg.HealthTimeout(),
		RequestTimeout: cfg.RequestTimeout(),
	}), cfg, nil
}

func NewRootCmd() *cobra.Command {
	cmder := &rootCommander{}

	cmd := &cobra.Command{
		Use:           "katutubo-chat",
		Short:         "Chat with the Katutubo LLM",
		Long:          rootLongDesc,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd)
		},
	}
	cmd.Flags().StringVar(&cmder.style, "style", "dark", "Markdown style (dark, light, notty, ...)")

	cmd.AddCommand(NewAskCmd(), NewPingCmd())
	return cmd
}

func (c *rootCommander) run(cmd *cobra.Command) error {
	cli, cfg, err := newClient()
	if err != nil {
		return err
	}
	// the chat screen owns the terminal
	logger.SetOutput(io.Discard)
	m := tui.New(cli, cfg.RequestTimeout(), c.style)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil {
		return fmt.Errorf("chat screen failed: %w", err)
	}
	return nil
}

func NewAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Send one prompt without history and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, _, err := newClient()
			if err != nil {
				return err
			}
			resp, err := cli.Infer(cmd.Context(), strings.Join(args, " "), nil)
			if err != nil {
				return err
			}
			answer := resp.Response
			if answer == "" {
				answer = tui.FallbackAnswer
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
}

func NewPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Wait for the service and print its banner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, _, err := newClient()
			if err != nil {
				return err
			}
			resp, err := cli.Root(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}
