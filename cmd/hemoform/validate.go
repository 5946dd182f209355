package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-hemoform/pkg/submit"
)

func validateCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate <form>",
		Short: "Validate field values without submitting",
		Long: `Loads field values from a YAML or JSON file, prints the result of every
active field and exits 1 when the form could not be submitted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			form, err := a.newForm(args[0], out)
			if err != nil {
				return err
			}
			values, err := readValues(cmd, file)
			if err != nil {
				return err
			}
			allowed, err := form.Fill(values)
			if err != nil {
				return err
			}
			if form.Fieldsets != nil {
				printf(out, "modo: %s\n", form.Mode())
			}
			printResults(out, form.State.Results())
			if !allowed {
				printf(out, "%s\n", submit.MessageInvalid)
				return errNotReady
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Values file (YAML or JSON, - for stdin)")
	return cmd
}

func submitCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "submit <form>",
		Short: "Validate field values and submit them to the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			form, err := a.newForm(args[0], out)
			if err != nil {
				return err
			}
			values, err := readValues(cmd, file)
			if err != nil {
				return err
			}
			if _, err := form.Fill(values); err != nil {
				return err
			}

			outcome, err := form.Submit(cmd.Context())
			if err != nil {
				return err
			}
			logOutcome(a.logger, outcome)
			if outcome.Status == submit.StatusInvalid {
				printResults(out, form.State.Results())
			}
			printf(out, "%s\n", outcome.Message)
			if outcome.Status != submit.StatusSuccess {
				return errNotReady
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Values file (YAML or JSON, - for stdin)")
	return cmd
}
