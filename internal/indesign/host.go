package indesign

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"idsexport/internal/export"
)

// Config locates the working directory shared with the server.
type Config struct {
	// ClientWorkdir is the shared directory as mounted on this machine.
	ClientWorkdir string
	// ServerWorkdir is the same directory as seen by InDesign Server.
	ServerWorkdir string
	ServerStyle   PathStyle
	// KeepWorkdir leaves per-document directories in place for debugging.
	KeepWorkdir bool
}

// Host implements export.Host by sending scripts to a ScriptRunner.
type Host struct {
	runner ScriptRunner
	cfg    Config
	local  afero.Fs
	shared afero.Fs
	logger *log.Logger
}

// NewHost creates a host. local holds sources and destinations, shared
// holds the working directory; both are usually afero.NewOsFs().
func NewHost(runner ScriptRunner, cfg Config, local, shared afero.Fs, logger *log.Logger) *Host {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.ServerStyle == "" {
		cfg.ServerStyle = PathStylePosix
	}
	return &Host{runner: runner, cfg: cfg, local: local, shared: shared, logger: logger}
}

func (h *Host) run(ctx context.Context, name string, data any, args map[string]string) (string, error) {
	s, err := BuildScript(name, data, args)
	if err != nil {
		return "", err
	}
	return h.runner.RunScript(ctx, s)
}

// Open stages path into a fresh working directory and opens the copy.
func (h *Host) Open(ctx context.Context, path string) (export.Document, error) {
	wd, err := NewWorkdir(h.local, h.shared, h.cfg.ClientWorkdir, h.cfg.ServerWorkdir, h.cfg.ServerStyle)
	if err != nil {
		return nil, err
	}
	staged, err := wd.StageIn(path)
	if err != nil {
		h.cleanup(wd)
		return nil, err
	}

	name, err := h.run(ctx, ScriptOpen, nil, map[string]string{"source": wd.ServerPath(staged)})
	if err != nil {
		h.cleanup(wd)
		return nil, err
	}
	h.logger.Debug("document opened", "source", path, "document", name, "workdir", wd.client)
	return &document{host: h, wd: wd, name: strings.TrimSpace(name), staged: staged}, nil
}

// Environment reports the server version, presets and capabilities.
func (h *Host) Environment(ctx context.Context) (export.Environment, error) {
	out, err := h.run(ctx, ScriptEnvironment, nil, nil)
	if err != nil {
		return export.Environment{}, err
	}
	return parseEnvironment(out), nil
}

// CloseAll closes every document open on the server without saving and
// returns how many there were.
func (h *Host) CloseAll(ctx context.Context) (int, error) {
	out, err := h.run(ctx, ScriptCloseAll, nil, nil)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("close all: unexpected result %q", out)
	}
	return n, nil
}

func (h *Host) cleanup(wd *Workdir) {
	if h.cfg.KeepWorkdir {
		return
	}
	if err := wd.Remove(); err != nil {
		h.logger.Warn("remove workdir", "dir", wd.client, "err", err)
	}
}

func parseEnvironment(out string) export.Environment {
	lines := strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n")
	field := func(i int) []string {
		if i >= len(lines) || strings.TrimSpace(lines[i]) == "" {
			return nil
		}
		return strings.Split(lines[i], "\t")
	}
	env := export.Environment{
		FlattenerPresets: field(1),
		PDFExportPresets: field(2),
	}
	if len(lines) > 0 {
		env.Version = strings.TrimSpace(lines[0])
	}
	env.Capabilities = export.CapabilitiesForVersion(env.Version)
	return env
}

type document struct {
	host   *Host
	wd     *Workdir
	name   string
	staged string
}

func (d *document) args(extra ...string) map[string]string {
	args := map[string]string{"document": d.name}
	for i := 0; i+1 < len(extra); i += 2 {
		args[extra[i]] = extra[i+1]
	}
	return args
}

// outputName is the temporary name of an output inside the workdir.
func (d *document) outputName(ext string) string {
	root := strings.TrimSuffix(d.staged, filepath.Ext(d.staged))
	return root + "TMP." + ext
}

func extFor(dest string, f export.Format) string {
	if ext := strings.TrimPrefix(filepath.Ext(dest), "."); ext != "" {
		return strings.ToLower(ext)
	}
	if f == export.FormatJPEG {
		return "jpg"
	}
	return string(f)
}

func (d *document) ExportPDF(ctx context.Context, dest string, settings *export.PDFSettings) error {
	tmp := d.outputName(extFor(dest, export.FormatPDF))
	if _, err := d.host.run(ctx, ScriptExportPDF, settings, d.args("destination", d.wd.ServerPath(tmp))); err != nil {
		return err
	}
	return d.wd.Collect(tmp, dest)
}

func (d *document) ExportPDFPreset(ctx context.Context, dest, preset string) error {
	tmp := d.outputName(extFor(dest, export.FormatPDF))
	out, err := d.host.run(ctx, ScriptExportPDFPreset, nil, d.args("destination", d.wd.ServerPath(tmp), "preset", preset))
	if err != nil {
		return err
	}
	if strings.TrimSpace(out) == "missing-preset" {
		return &export.PresetNotFoundError{Kind: "pdf export", Name: preset}
	}
	return d.wd.Collect(tmp, dest)
}

func (d *document) Export(ctx context.Context, kind export.Format, dest string) error {
	ef, ok := exportFormats[kind]
	if !ok {
		return &export.InvalidFormatError{Value: string(kind)}
	}
	tmp := d.outputName(extFor(dest, kind))
	if _, err := d.host.run(ctx, ScriptExport, exportData{ExportFormat: ef}, d.args("destination", d.wd.ServerPath(tmp))); err != nil {
		return err
	}
	return d.wd.Collect(tmp, dest)
}

// PackageForPrint packages into a workdir directory and writes it to dest
// as a zip archive.
func (d *document) PackageForPrint(ctx context.Context, dest string, params export.PackagingParams) error {
	dir := strings.TrimSuffix(d.staged, filepath.Ext(d.staged))
	out, err := d.host.run(ctx, ScriptPackage, params, d.args("destination", d.wd.ServerPath(dir)))
	if err != nil {
		return err
	}
	if strings.TrimSpace(out) != "ok" {
		return fmt.Errorf("packageForPrint returned %q", out)
	}
	return d.wd.CollectZip(dir, dest)
}

func (d *document) Save(ctx context.Context, dest string) error {
	tmp := d.outputName(extFor(dest, export.FormatSaveAs))
	if _, err := d.host.run(ctx, ScriptSave, nil, d.args("destination", d.wd.ServerPath(tmp))); err != nil {
		return err
	}
	return d.wd.Collect(tmp, dest)
}

func (d *document) Links(ctx context.Context) ([]export.Link, error) {
	out, err := d.host.run(ctx, ScriptLinks, nil, d.args())
	if err != nil {
		return nil, err
	}
	var links []export.Link
	for _, line := range strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("links: malformed line %q", line)
		}
		links = append(links, &link{doc: d, id: parts[0], status: linkStatus(parts[1]), name: parts[2]})
	}
	return links, nil
}

// Close closes the document without saving and removes the workdir.
func (d *document) Close(ctx context.Context) error {
	_, err := d.host.run(ctx, ScriptClose, nil, d.args())
	d.host.cleanup(d.wd)
	return err
}

// linkStatus accepts both "LINK_OUT_OF_DATE" and "LinkStatus.LINK_OUT_OF_DATE".
func linkStatus(s string) export.LinkStatus {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	return export.LinkStatus(s)
}

type link struct {
	doc    *document
	id     string
	name   string
	status export.LinkStatus
}

func (l *link) Name() string              { return l.name }
func (l *link) Status() export.LinkStatus { return l.status }

func (l *link) Update(ctx context.Context) error {
	out, err := l.doc.host.run(ctx, ScriptLinkUpdate, nil, l.doc.args("link", l.id))
	if err != nil {
		return err
	}
	l.status = linkStatus(out)
	if l.status == export.LinkOutOfDate {
		return errors.New("link still out of date after update")
	}
	return nil
}

var (
	_ export.Host     = (*Host)(nil)
	_ export.Document = (*document)(nil)
	_ ScriptRunner    = (*Client)(nil)
)
