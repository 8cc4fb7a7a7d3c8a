package main

import (
	"errors"

	"github.com/spf13/cobra"

	"idsexport/internal/export"
	"idsexport/internal/options"
)

func newResolveCmd(c *cli) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "resolve SOURCE DESTINATIONS",
		Short: "Print the settings an export would use without contacting the server",
		Long: `Resolve the options of every destination and print the resulting
settings as JSON. Host-dependent fields (flattener preset, spread
override capabilities) are filled in only when the export runs.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dests, err := options.ParseDestinations(args[1])
			if err != nil {
				return err
			}
			svc := export.NewService(nil, export.WithLogger(c.logger))

			var results []*export.Result
			var errs []error
			for _, dest := range dests {
				f := export.Format(format)
				if f == "" {
					f = export.FormatForPath(dest.Path)
				}
				res, err := svc.Resolve(export.Request{
					Format:      f,
					Source:      args[0],
					Destination: dest.Path,
					Options:     dest.Options,
				})
				if err != nil {
					errs = append(errs, err)
					continue
				}
				results = append(results, res)
			}
			if err := errors.Join(errs...); err != nil {
				return err
			}
			return c.printJSON(results)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "output format: pdf, jpeg, idml, packaging or saveas")
	return cmd
}
