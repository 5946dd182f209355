package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-hemoform/pkg/submit"
	"github.com/goliatone/go-hemoform/pkg/terminal"
)

func fillCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fill <form>",
		Short: "Fill a form interactively and submit it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			form, err := a.newForm(args[0], out)
			if err != nil {
				return err
			}
			driver := a.driver
			if driver == nil {
				driver = terminal.NewSurveyDriver(out)
			}
			runner := terminal.NewRunner(terminal.WithPromptDriver(driver))

			outcome, err := runner.Run(cmd.Context(), form.State, form.Fieldsets, form.Submitter)
			if err != nil {
				return err
			}
			logOutcome(a.logger, outcome)
			if outcome.Status != submit.StatusSuccess {
				return errNotReady
			}
			return nil
		},
	}
}
