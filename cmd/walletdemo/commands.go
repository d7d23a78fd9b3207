package main

import (
	"context"
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kroma-labs/engine-go/config"
	"github.com/kroma-labs/engine-go/httpclient"
	"github.com/kroma-labs/engine-go/wallet"
)

// DefaultLabel is the wallet label used when --label is not given.
const DefaultLabel = "USER_ID"

// app holds the flags and outputs shared by all commands.
type app struct {
	stdout io.Writer
	logger zerolog.Logger

	debug   bool
	envFile string
	timeout time.Duration
	label   string
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		stdout: stdout,
		logger: zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: true}).With().Timestamp().Logger(),
	}

	cmd := &cobra.Command{
		Use:           "walletdemo",
		Short:         "Create a backend wallet and list all wallets",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			a.runDemo(cmd.Context(), svc)
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.BoolVar(&a.debug, "debug", false, "Log every engine request and response")
	flags.StringVar(&a.envFile, "env-file", "", "Path to the .env file (default: $ENV_FILE or ./.env)")
	flags.DurationVar(&a.timeout, "timeout", httpclient.DefaultTimeout, "Per-request timeout")
	cmd.Flags().StringVar(&a.label, "label", DefaultLabel, "Label of the wallet to create")

	cmd.AddCommand(a.newCreateCommand(), a.newListCommand())
	return cmd
}

func (a *app) newCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <label>",
		Short: "Create a backend wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			w, err := svc.CreateWallet(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("create wallet: %w", err)
			}
			return a.print("Wallet created:", w)
		},
	}
}

func (a *app) newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all backend wallets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			wallets, err := svc.ListWallets(cmd.Context())
			if err != nil {
				return fmt.Errorf("list wallets: %w", err)
			}
			return a.print("All wallets:", wallets)
		},
	}
}

// runDemo creates a wallet and lists wallets. Each step logs its failure
// and the demo moves on.
func (a *app) runDemo(ctx context.Context, svc *wallet.Service) {
	if w, err := svc.CreateWallet(ctx, a.label); err != nil {
		a.logger.Error().Err(err).Msg("Failed to create wallet")
	} else if err := a.print("Wallet created:", w); err != nil {
		a.logger.Error().Err(err).Msg("Failed to print wallet")
	}

	if wallets, err := svc.ListWallets(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Failed to get wallets")
	} else if err := a.print("All wallets:", wallets); err != nil {
		a.logger.Error().Err(err).Msg("Failed to print wallets")
	}
}

// service loads the configuration and builds the wallet service.
func (a *app) service() (*wallet.Service, error) {
	var opts []config.LoadOption
	if a.envFile != "" {
		opts = append(opts, config.WithEnvFile(a.envFile))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, err
	}

	return wallet.NewFromConfig(cfg,
		wallet.WithLogger(a.logger),
		wallet.WithClientOptions(
			httpclient.WithDebug(a.debug),
			httpclient.WithDefaultOptions(httpclient.RequestOptions{
				Timeout: httpclient.Duration(a.timeout),
			}),
		),
	), nil
}

func (a *app) print(title string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.stdout, "%s\n%s\n", title, data)
	return err
}
