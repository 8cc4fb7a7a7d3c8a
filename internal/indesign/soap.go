// Package indesign implements the export host on top of InDesign Server's
// SOAP RunScript service. Every host operation is one generated script.
package indesign

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hooklift/gowsdl/soap"
)

// ErrScriptFailed is returned when the server reports a non-zero errorNumber
// or a SOAP fault.
var ErrScriptFailed = errors.New("indesign: script failed")

// Script is one RunScript invocation.
type Script struct {
	Name string
	Text string
	Args map[string]string
}

// ScriptRunner executes scripts on a host and returns the script result.
type ScriptRunner interface {
	RunScript(ctx context.Context, s Script) (string, error)
}

// ScriptError carries the server's error report for a script.
type ScriptError struct {
	Script string
	Number int
	Detail string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %s: error %d: %s", e.Script, e.Number, e.Detail)
}

func (e *ScriptError) Unwrap() error { return ErrScriptFailed }

// Client talks to one InDesign Server SOAP endpoint.
type Client struct {
	url    string
	soap   *soap.Client
	logger *log.Logger
}

// soapAction is sent quoted, as the server's WSDL declares it.
const soapAction = `"RunScript"`

// NewClient creates a client for the server at url, e.g. http://ids:12345.
func NewClient(url string, timeout time.Duration, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	url = strings.TrimRight(url, "/")
	return &Client{
		url:    url,
		soap:   soap.NewClient(url, soap.WithHTTPClient(&http.Client{Timeout: timeout})),
		logger: logger,
	}
}

type runScriptRequest struct {
	XMLName xml.Name            `xml:"http://ns.adobe.com/InDesign/soap/ RunScript"`
	Params  runScriptParameters `xml:"runScriptParameters"`
}

type runScriptParameters struct {
	ScriptText     string      `xml:"scriptText"`
	ScriptLanguage string      `xml:"scriptLanguage"`
	ScriptFile     string      `xml:"scriptFile"`
	ScriptArgs     []scriptArg `xml:"scriptArgs"`
}

type scriptArg struct {
	Name  string `xml:"name"`
	Value string `xml:"value"`
}

type runScriptResponse struct {
	XMLName      xml.Name `xml:"RunScriptResponse"`
	ErrorNumber  int      `xml:"errorNumber"`
	ErrorString  string   `xml:"errorString"`
	ScriptResult struct {
		Data string `xml:"data"`
	} `xml:"scriptResult"`
}

// RunScript sends s as inline javascript. Args are passed as scriptArgs
// in name order.
func (c *Client) RunScript(ctx context.Context, s Script) (string, error) {
	start := time.Now()
	c.logger.Debug("RunScript", "script", s.Name, "args", len(s.Args))

	var resp runScriptResponse
	if err := c.soap.CallContext(ctx, soapAction, newRunScriptRequest(s), &resp); err != nil {
		err = scriptFailure(s.Name, err)
		c.logger.Error("RunScript failed", "script", s.Name, "url", c.url, "err", err)
		return "", err
	}
	if resp.XMLName.Local == "" {
		return "", fmt.Errorf("decode %s response: no RunScriptResponse", s.Name)
	}
	if resp.ErrorNumber != 0 {
		err := &ScriptError{Script: s.Name, Number: resp.ErrorNumber, Detail: resp.ErrorString}
		c.logger.Error("RunScript failed", "script", s.Name, "url", c.url, "err", err)
		return "", err
	}
	c.logger.Debug("RunScript done", "script", s.Name, "duration_ms", time.Since(start).Milliseconds())
	return resp.ScriptResult.Data, nil
}

func newRunScriptRequest(s Script) *runScriptRequest {
	req := &runScriptRequest{Params: runScriptParameters{
		ScriptText:     s.Text,
		ScriptLanguage: "javascript",
	}}
	names := make([]string, 0, len(s.Args))
	for name := range s.Args {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		req.Params.ScriptArgs = append(req.Params.ScriptArgs, scriptArg{Name: name, Value: s.Args[name]})
	}
	return req
}

// scriptFailure turns a SOAP fault into a ScriptError numbered -1; transport
// and decoding errors are wrapped as they are.
func scriptFailure(name string, err error) error {
	var fault *soap.SOAPFault
	if errors.As(err, &fault) {
		return &ScriptError{Script: name, Number: -1, Detail: strings.TrimSpace(fault.Code + ": " + fault.String)}
	}
	return fmt.Errorf("run %s: %w", name, err)
}
