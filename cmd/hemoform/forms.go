package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	hemoform "github.com/goliatone/go-hemoform"
	"github.com/goliatone/go-hemoform/pkg/client"
	"github.com/goliatone/go-hemoform/pkg/model"
	"github.com/goliatone/go-hemoform/pkg/submit"
)

// profileForms need the signed-in user's id in their payload.
var profileForms = map[string]bool{
	"agendamento": true,
}

func formsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "forms",
		Short: "List the available forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, id := range a.store.IDs() {
				spec, _ := a.store.Form(id)
				printf(out, "%-12s %s\n", id, spec.Title)
			}
			return nil
		},
	}
}

// newForm builds a form wired to the backend client. Navigation and list
// refreshes are reported on out.
func (a *app) newForm(id string, out io.Writer) (*hemoform.Form, error) {
	spec, ok := a.store.Form(id)
	if !ok {
		return nil, fmt.Errorf("unknown form %q (see 'hemoform forms')", id)
	}

	opts := []submit.Option{
		submit.WithTokens(a.tokens),
		submit.WithLogger(a.logger.Named("submit")),
		submit.WithNavigator(navigator{out: out}),
		submit.WithRefresher(refresher{client: a.client, out: out}),
	}
	if a.checker != nil {
		opts = append(opts, submit.WithChecker(a.checker))
	}
	if profileForms[spec.ID] {
		opts = append(opts, submit.WithEnricher(client.NewProfileEnricher(a.client)))
	}
	return hemoform.NewForm(spec, a.client, hemoform.WithSubmitOptions(opts...))
}

type navigator struct{ out io.Writer }

func (n navigator) Navigate(target string) {
	printf(n.out, "→ %s\n", target)
}

type refresher struct {
	client *client.Client
	out    io.Writer
}

func (r refresher) Refresh(ctx context.Context, list string) error {
	items, err := r.client.Fetch(ctx, list, "")
	if err != nil {
		return err
	}
	printf(r.out, "%s: %d item(s)\n", list, len(items))
	return nil
}

// readValues loads a YAML (or JSON) mapping of field key to value. "-"
// reads stdin.
func readValues(cmd *cobra.Command, path string) (map[string]any, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	values := map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return values, nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("a values file is required (-f)")
	}
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func printResults(out io.Writer, results []model.ValidationResult) {
	for _, result := range results {
		if !result.Active {
			continue
		}
		mark := "✓"
		if !result.Valid {
			mark = "✗"
		}
		if result.Message == "" {
			printf(out, "%s %s\n", mark, result.Key)
			continue
		}
		printf(out, "%s %s: %s\n", mark, result.Key, result.Message)
	}
}

func logOutcome(logger *zap.Logger, out submit.Outcome) {
	if out.Err != nil {
		logger.Debug("outcome detail", zap.String("status", string(out.Status)), zap.Error(out.Err))
	}
}
