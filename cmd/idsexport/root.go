package main

import (
	"encoding/json"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"idsexport/internal/app"
	"idsexport/internal/config"
	"idsexport/internal/indesign"
	"idsexport/internal/scriptsim"
)

type globalOptions struct {
	configPath    string
	url           string
	clientWorkdir string
	serverWorkdir string
	pathStyle     string
	keepWorkdir   bool
	dryRun        bool
	verbose       bool
	jsonOutput    bool
}

type cli struct {
	opts   globalOptions
	out    io.Writer
	errOut io.Writer
	in     io.Reader
	logger *log.Logger

	// fs is the filesystem real runs use; dry runs layer over it.
	fs afero.Fs
	// engine is set while a dry run is in progress.
	engine *scriptsim.Engine
}

func newCLI(out, errOut io.Writer, in io.Reader) *cli {
	return &cli{
		out:    out,
		errOut: errOut,
		in:     in,
		fs:     afero.NewOsFs(),
		logger: log.NewWithOptions(errOut, log.Options{Prefix: "idsexport"}),
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "idsexport",
		Short: "Export InDesign documents through InDesign Server",
		Long: `idsexport opens documents on InDesign Server and exports them to PDF,
JPEG or IDML, packages them for print, or saves them under a new name.

Destinations take named options after a "|", and several destinations
are separated by ";":

  idsexport export brochure.indd "out/brochure.pdf|colorSpace=CMYK,cropMarks;out/cover.jpg"`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.opts.verbose {
				c.logger.SetLevel(log.DebugLevel)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.opts.configPath, "config", "", "CUE config file")
	flags.StringVar(&c.opts.url, "url", "", "InDesign Server SOAP endpoint")
	flags.StringVar(&c.opts.clientWorkdir, "client-workdir", "", "shared working directory as mounted locally")
	flags.StringVar(&c.opts.serverWorkdir, "server-workdir", "", "shared working directory as seen by the server")
	flags.StringVar(&c.opts.pathStyle, "server-path-style", "", "server path style: posix or windows")
	flags.BoolVar(&c.opts.keepWorkdir, "keep-workdir", false, "keep per-document working directories")
	flags.BoolVar(&c.opts.dryRun, "dry-run", false, "run scripts against a simulated server and write nothing")
	flags.BoolVarP(&c.opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&c.opts.jsonOutput, "json", false, "print results as JSON")

	root.AddCommand(newExportCmd(c))
	root.AddCommand(newResolveCmd(c))
	root.AddCommand(newCloseAllCmd(c))
	root.AddCommand(newProfilesCmd(c))
	root.AddCommand(newHashKeyCmd(c))
	root.AddCommand(newVersionCmd(c))
	return root
}

// config loads the config file and applies explicitly set flags on top.
func (c *cli) config(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(c.opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.Server.URL = c.opts.url
	}
	if flags.Changed("client-workdir") {
		cfg.Server.ClientWorkdir = c.opts.clientWorkdir
		if !flags.Changed("server-workdir") {
			cfg.Server.ServerWorkdir = c.opts.clientWorkdir
		}
	}
	if flags.Changed("server-workdir") {
		cfg.Server.ServerWorkdir = c.opts.serverWorkdir
	}
	if flags.Changed("server-path-style") {
		cfg.Server.PathStyle = c.opts.pathStyle
	}
	if flags.Changed("keep-workdir") {
		cfg.Server.KeepWorkdir = c.opts.keepWorkdir
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// host connects to the configured server, or to a simulator when
// --dry-run is set. Dry runs read the real filesystem and write to memory.
func (c *cli) host(cmd *cobra.Command) (*indesign.Host, error) {
	cfg, err := c.config(cmd)
	if err != nil {
		return nil, err
	}
	if !c.opts.dryRun {
		return app.NewHost(cfg, nil, c.fs, c.logger)
	}

	fs := afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(c.fs), afero.NewMemMapFs())
	engine, err := scriptsim.New(fs, scriptsim.DefaultOptions())
	if err != nil {
		return nil, err
	}
	c.engine = engine
	c.logger.Debug("dry run", "server", "simulated")
	return app.NewHost(cfg, engine, fs, c.logger)
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
