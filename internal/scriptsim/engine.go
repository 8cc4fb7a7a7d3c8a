// Package scriptsim runs host scripts against a simulated InDesign DOM.
// It backs dry runs and tests: outputs are small JSON descriptions of what
// the server would have written, stored on an afero filesystem.
package scriptsim

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dop251/goja"
	"github.com/spf13/afero"

	"idsexport/internal/indesign"
)

//go:embed dom.js
var domSource string

// LinkFixture is a link placed in a simulated document.
type LinkFixture struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Options describes the simulated server.
type Options struct {
	Version          string                   `json:"version"`
	FlattenerPresets []string                 `json:"flattenerPresets"`
	PDFExportPresets []string                 `json:"pdfExportPresets"`
	Links            map[string][]LinkFixture `json:"links"`
}

// DefaultOptions mirrors a stock InDesign Server installation.
func DefaultOptions() Options {
	return Options{
		Version:          "18.5.0.57",
		FlattenerPresets: []string{"[Low Resolution]", "[Medium Resolution]", "[High Resolution]"},
		PDFExportPresets: []string{"[High Quality Print]", "[PDF/X-1a:2001]", "[PDF/X-4:2008]", "[Press Quality]", "[Smallest File Size]"},
		Links:            map[string][]LinkFixture{},
	}
}

// Call is one DOM operation performed by a script.
type Call struct {
	Script   string
	Op       string
	Document string
	Payload  map[string]any
}

// Engine is a persistent simulated server. Like the real one, document and
// preference state carries over between scripts.
type Engine struct {
	mu     sync.Mutex
	vm     *goja.Runtime
	fs     afero.Fs
	script string
	calls  []Call
}

// New boots a simulator writing to fs.
func New(fs afero.Fs, opts Options) (*Engine, error) {
	if opts.Links == nil {
		opts.Links = map[string][]LinkFixture{}
	}
	if opts.FlattenerPresets == nil {
		opts.FlattenerPresets = []string{}
	}
	if opts.PDFExportPresets == nil {
		opts.PDFExportPresets = []string{}
	}
	cfg, err := json.Marshal(opts)
	if err != nil {
		return nil, err
	}

	e := &Engine{vm: goja.New(), fs: fs}
	if err := e.vm.Set("__native", e.natives()); err != nil {
		return nil, err
	}
	if _, err := e.vm.RunString("var __config = " + string(cfg) + ";"); err != nil {
		return nil, fmt.Errorf("scriptsim: config: %w", err)
	}
	if _, err := e.vm.RunScript("dom.js", domSource); err != nil {
		return nil, fmt.Errorf("scriptsim: boot: %w", err)
	}
	return e, nil
}

func (e *Engine) natives() *goja.Object {
	obj := e.vm.NewObject()
	for name, fn := range map[string]func(goja.FunctionCall) goja.Value{
		"write": func(call goja.FunctionCall) goja.Value {
			path, data := call.Argument(0).String(), call.Argument(1).String()
			if err := e.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				panic(e.vm.NewGoError(err))
			}
			if err := afero.WriteFile(e.fs, path, []byte(data), 0o644); err != nil {
				panic(e.vm.NewGoError(err))
			}
			return goja.Undefined()
		},
		"mkdir": func(call goja.FunctionCall) goja.Value {
			if err := e.fs.MkdirAll(call.Argument(0).String(), 0o755); err != nil {
				panic(e.vm.NewGoError(err))
			}
			return goja.Undefined()
		},
		"exists": func(call goja.FunctionCall) goja.Value {
			ok, err := afero.Exists(e.fs, call.Argument(0).String())
			return e.vm.ToValue(err == nil && ok)
		},
		"record": func(call goja.FunctionCall) goja.Value {
			c := Call{Script: e.script, Op: call.Argument(0).String(), Document: call.Argument(1).String()}
			if raw := call.Argument(2).String(); raw != "" {
				_ = json.Unmarshal([]byte(raw), &c.Payload)
			}
			e.calls = append(e.calls, c)
			return goja.Undefined()
		},
	} {
		_ = obj.Set(name, fn)
	}
	return obj
}

// RunScript executes s and returns its completion value as a string.
// Script exceptions are reported the way the server reports them.
func (e *Engine) RunScript(ctx context.Context, s indesign.Script) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	args := e.vm.NewObject()
	for k, v := range s.Args {
		if err := args.Set(k, v); err != nil {
			return "", err
		}
	}
	if err := e.vm.Set("__args", args); err != nil {
		return "", err
	}
	e.script = s.Name

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()
	defer func() {
		close(done)
		<-stopped
		e.vm.ClearInterrupt()
	}()

	val, err := e.vm.RunScript(s.Name+".jsx", s.Text)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			if cause := interrupted.Unwrap(); cause != nil {
				return "", cause
			}
			return "", context.Canceled
		}
		var exc *goja.Exception
		if errors.As(err, &exc) {
			return "", &indesign.ScriptError{Script: s.Name, Number: 1, Detail: exc.Value().String()}
		}
		return "", err
	}
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return "", nil
	}
	return val.String(), nil
}

// Calls returns the DOM operations recorded so far.
func (e *Engine) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}

// OpenDocuments returns the names of documents currently open.
func (e *Engine) OpenDocuments() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var names []string
	docs := e.vm.Get("__state").ToObject(e.vm).Get("documents").ToObject(e.vm)
	n := int(docs.Get("length").ToInteger())
	for i := 0; i < n; i++ {
		names = append(names, docs.Get(fmt.Sprint(i)).ToObject(e.vm).Get("name").String())
	}
	return names
}

var _ indesign.ScriptRunner = (*Engine)(nil)
