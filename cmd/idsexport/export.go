package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"idsexport/internal/export"
	"idsexport/internal/options"
)

func newExportCmd(c *cli) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export SOURCE DESTINATIONS",
		Short: "Export, package or save a document",
		Long: `Export SOURCE to every destination in DESTINATIONS.

The format follows the destination extension: .pdf, .jpg/.jpeg and .idml
export, .zip packages for print, anything else saves a copy. --format
overrides the inference for every destination.`,
		Example: `  idsexport export brochure.indd "brochure.pdf|pdfExportPresetName=[Press Quality]"
  idsexport export brochure.indd "print.pdf|colorSpace=CMYK,bleedTop=3,cropMarks;brochure.zip|includePdf"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dests, err := options.ParseDestinations(args[1])
			if err != nil {
				return err
			}
			host, err := c.host(cmd)
			if err != nil {
				return err
			}
			svc := export.NewService(host, export.WithLogger(c.logger))

			var results []*export.Result
			var errs []error
			for _, dest := range dests {
				f := export.Format(format)
				if f == "" {
					f = export.FormatForPath(dest.Path)
				}
				res, err := svc.Run(cmd.Context(), export.Request{
					Format:      f,
					Source:      args[0],
					Destination: dest.Path,
					Options:     dest.Options,
				})
				if res != nil {
					results = append(results, res)
				}
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", dest.Path, err))
					if !c.opts.jsonOutput {
						fmt.Fprintf(c.out, "failed  %s  %s\n", dest.Path, err)
					}
					continue
				}
				if !c.opts.jsonOutput {
					fmt.Fprintf(c.out, "%-7s %s  %s\n", res.Job.State, res.Output, res.Job.Format)
				}
			}

			if c.opts.jsonOutput {
				if err := c.printJSON(results); err != nil {
					return err
				}
			}
			if c.engine != nil && c.opts.verbose {
				for _, call := range c.engine.Calls() {
					c.logger.Debug("simulated", "script", call.Script, "op", call.Op, "document", call.Document)
				}
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "output format: pdf, jpeg, idml, packaging or saveas")
	return cmd
}
