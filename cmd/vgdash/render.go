package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/vgdash/internal/dashboard"
	"github.com/rewired-gh/vgdash/internal/logger"
	"github.com/rewired-gh/vgdash/internal/render"
)

var outputPath string

func init() {
	renderCmd.Flags().StringVarP(&outputPath, "output", "o", "dashboard.html", "Output HTML file (- for stdout)")
	addSelectionFlags(renderCmd)
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the dashboard for one selection to a static HTML file",
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
		for _, adv := range page.Advisories {
			logger.Warn("%s", adv)
		}

		if outputPath == "-" {
			if err := render.Write(cmd.OutOrStdout(), page); err != nil {
				return fmt.Errorf("render: %w", err)
			}
			return nil
		}
		if err := writeHTML(outputPath, page); err != nil {
			return err
		}
		logger.Info("Wrote %d panels to %s (%s)", len(page.Panels), outputPath, page.Summary)
		return nil
	},
}

// writeHTML renders page into a new file at path. A failed close is returned
// like a failed write.
func writeHTML(path string, page *dashboard.Page) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()

	if err := render.Write(f, page); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}
