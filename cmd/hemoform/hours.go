package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-hemoform/pkg/formstate"
	"github.com/goliatone/go-hemoform/pkg/schedule"
)

const hoursForm = "horario"

func hoursCmd(a *app) *cobra.Command {
	var (
		file        string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "hours",
		Short: "Stage and submit a blood center's weekly operating hours",
		Long: `Reads a YAML list of entries (dia_semana, horario_abertura,
horario_fechamento, observacao), stages each one and posts them all.
Entries are kept and reported when any request fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			spec, ok := a.store.Form(hoursForm)
			if !ok {
				return fmt.Errorf("form %q is not defined", hoursForm)
			}
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			var rows []map[string]any
			if err := yaml.Unmarshal(data, &rows); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}

			state, err := formstate.New(spec)
			if err != nil {
				return err
			}
			planner, err := schedule.New(state, a.client,
				schedule.WithTokens(a.tokens),
				schedule.WithConcurrency(concurrency),
				schedule.WithLogger(a.logger.Named("schedule")),
			)
			if err != nil {
				return err
			}

			for i, row := range rows {
				if _, err := state.Fill(row); err != nil {
					return fmt.Errorf("entry %d: %w", i+1, err)
				}
				entry, err := planner.Add()
				if err != nil {
					printf(out, "✗ entrada %d: %s\n", i+1, schedule.Message(err))
					printResults(out, state.Results())
					state.Reset()
					continue
				}
				printf(out, "+ %s %s-%s\n", schedule.WeekdayName(entry.Weekday), entry.Opening, entry.Closing)
			}

			report, err := planner.Submit(cmd.Context())
			if err != nil {
				printf(out, "%s\n", schedule.Message(err))
				return errNotReady
			}
			printf(out, "%s\n", report.Message)
			if report.Failed > 0 {
				return errNotReady
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Entries file (YAML, - for stdin)")
	cmd.Flags().IntVar(&concurrency, "concurrency", schedule.DefaultConcurrency, "Requests in flight at once")
	return cmd
}
