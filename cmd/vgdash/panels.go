package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/vgdash/internal/panel"
)

func init() {
	addSelectionFlags(panelsCmd)
	rootCmd.AddCommand(panelsCmd)
}

var panelsCmd = &cobra.Command{
	Use:   "panels",
	Short: "Evaluate every panel for one selection and print a summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if err := a.load(ctx); err != nil {
			return err
		}
		req, err := a.selection(ctx)
		if err != nil {
			return err
		}
		page, err := a.svc.Evaluate(ctx, req)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Genres: %s\nYears: %d-%d\n%s\n", strings.Join(page.Spec.Genres, ", "), page.Spec.YearMin, page.Spec.YearMax, page.Summary)
		for _, adv := range page.Advisories {
			fmt.Fprintf(out, "! %s\n", adv)
		}
		fmt.Fprintln(out)

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tKIND\tSCOPE\tROWS\tITEMS\tNOTES")
		for _, res := range page.Panels {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
				res.Panel.ID, res.Panel.Kind, res.Panel.Scope, res.InputRows, items(res), strings.Join(res.Advisories, " "))
		}
		return tw.Flush()
	},
}

// items counts the marks a panel would draw.
func items(res *panel.Result) int {
	switch {
	case res.Table != nil:
		return len(res.Table.Rows)
	case res.Shares != nil:
		return len(res.Shares.Rows)
	case res.Hierarchy != nil:
		return len(res.Hierarchy.Leaves())
	case res.Flow != nil:
		return len(res.Flow.Edges)
	case res.Matrix != nil:
		return len(res.Matrix.Metrics)
	case res.Profile != nil:
		return len(res.Profile.Categories)
	case len(res.Boxes) > 0:
		return len(res.Boxes)
	case len(res.Densities) > 0:
		return len(res.Densities)
	}
	return len(res.Records)
}
