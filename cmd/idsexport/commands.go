package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"idsexport/internal/auth"
)

func newCloseAllCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "close-all",
		Short: "Close every document open on the server without saving",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := c.host(cmd)
			if err != nil {
				return err
			}
			n, err := host.CloseAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "closed %d document(s)\n", n)
			return nil
		},
	}
}

func newProfilesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the PDF export presets installed on the server",
		Long:  "Print one PDF export preset name per line. With --json, print the full server environment.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := c.host(cmd)
			if err != nil {
				return err
			}
			env, err := host.Environment(cmd.Context())
			if err != nil {
				return err
			}
			if c.opts.jsonOutput {
				return c.printJSON(env)
			}
			for _, name := range env.PDFExportPresets {
				fmt.Fprintln(c.out, name)
			}
			return nil
		},
	}
}

func newHashKeyCmd(c *cli) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "hash-key [SECRET]",
		Short: "Print an api_keys entry for a secret",
		Long:  "Hash SECRET (or the first line of stdin) with bcrypt and print a name:hash entry for the api_keys setting.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name = strings.TrimSpace(name)
			if name == "" || strings.Contains(name, ":") {
				return errors.New("--name must be non-empty and must not contain ':'")
			}
			var secret string
			if len(args) == 1 {
				secret = args[0]
			} else {
				line, err := bufio.NewReader(c.in).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no secret given")
				}
				secret = strings.TrimSpace(line)
			}
			hash, err := auth.HashKey(secret)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%s:%s\n", name, hash)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "client", "client name recorded with the key")
	return cmd
}

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(c.out, versionString())
		},
	}
}
