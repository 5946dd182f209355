package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-hemoform/internal/config"
	"github.com/goliatone/go-hemoform/internal/logging"
	"github.com/goliatone/go-hemoform/pkg/client"
	"github.com/goliatone/go-hemoform/pkg/contract"
	"github.com/goliatone/go-hemoform/pkg/definitions"
	"github.com/goliatone/go-hemoform/pkg/terminal"
)

// errNotReady is returned by commands that finished without a successful
// submission; main exits 1 without printing it twice.
var errNotReady = errors.New("form not submitted")

// app carries what PersistentPreRunE builds for every command.
type app struct {
	verbose bool

	cfg     *config.Config
	logger  *zap.Logger
	store   *definitions.Store
	client  *client.Client
	tokens  client.TokenStore
	checker *contract.Checker

	// driver replaces the survey prompts in tests.
	driver terminal.PromptDriver
}

func main() {
	if err := config.LoadDotenv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	a := &app{}
	if err := newRootCmd(a).Execute(); err != nil {
		if !errors.Is(err, errNotReady) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "hemoform",
		Short: "Validate and submit blood donation forms",
		Long: `hemoform validates and submits the forms of the blood donation app
(registration, login, scheduling, campaigns, blood centers, operating hours
and inventory) against its REST backend.

Configuration comes from HEMO_* environment variables or a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		formsCmd(a),
		validateCmd(a),
		submitCmd(a),
		fillCmd(a),
		scoreCmd(),
		hoursCmd(a),
	)
	return root
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, err = logging.New(cfg.LogLevel, a.verbose)
	if err != nil {
		return err
	}

	if cfg.FormsDir != "" {
		a.store, err = definitions.LoadFS(os.DirFS(cfg.FormsDir))
	} else {
		a.store, err = definitions.Default()
	}
	if err != nil {
		return err
	}

	a.tokens, err = client.NewFileTokens(cfg.TokenFile)
	if err != nil {
		return err
	}

	a.client, err = client.New(cfg.APIBaseURL,
		client.WithHTTPClient(httpClient(cfg.HTTPTimeout)),
		client.WithTokens(a.tokens),
		client.WithLogger(a.logger.Named("client")),
	)
	if err != nil {
		return err
	}

	if cfg.ContractEnabled() {
		a.checker, err = contract.LoadFile(ctx, cfg.OpenAPIPath, contract.Options{})
		if err != nil {
			return err
		}
		a.logger.Debug("contract loaded",
			zap.String("path", cfg.OpenAPIPath),
			zap.Int("operations", a.checker.Operations()))
	}
	return nil
}

func httpClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
