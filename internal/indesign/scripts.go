package indesign

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strconv"
	"text/template"

	"idsexport/internal/export"
)

//go:embed templates/*.jsx
var templateFS embed.FS

var scriptTemplates = template.Must(template.New("scripts").Funcs(template.FuncMap{
	"js":        jsString,
	"enum":      jsEnum,
	"bool":      jsBool,
	"num":       jsNumber,
	"noProfile": func() export.HostEnum { return export.UseNoProfile },
}).ParseFS(templateFS, "templates/*.jsx"))

// Script names. Each is a template under templates/.
const (
	ScriptOpen            = "open"
	ScriptEnvironment     = "environment"
	ScriptExportPDF       = "export_pdf"
	ScriptExportPDFPreset = "export_pdf_preset"
	ScriptExport          = "export"
	ScriptPackage         = "package"
	ScriptLinks           = "links"
	ScriptLinkUpdate      = "link_update"
	ScriptSave            = "save"
	ScriptClose           = "close"
	ScriptCloseAll        = "close_all"
)

// BuildScript renders the named script with data and attaches args.
func BuildScript(name string, data any, args map[string]string) (Script, error) {
	var buf bytes.Buffer
	if err := scriptTemplates.ExecuteTemplate(&buf, name+".jsx", data); err != nil {
		return Script{}, fmt.Errorf("render %s: %w", name, err)
	}
	return Script{Name: name, Text: buf.String(), Args: args}, nil
}

// exportFormats maps formats exported with a plain exportFile call.
var exportFormats = map[export.Format]string{
	export.FormatJPEG: "ExportFormat.JPG",
	export.FormatIDML: "ExportFormat.INDESIGN_MARKUP",
}

type exportData struct {
	ExportFormat string
}

// jsString renders s as a double-quoted script literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func jsEnum(v export.HostEnum) string {
	return v.Enumeration() + "." + v.Member()
}

func jsBool(v any) (string, error) {
	switch b := v.(type) {
	case bool:
		return strconv.FormatBool(b), nil
	case *bool:
		if b == nil {
			return "false", nil
		}
		return strconv.FormatBool(*b), nil
	default:
		return "", fmt.Errorf("bool: unsupported %T", v)
	}
}

func jsNumber(v any) (string, error) {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n), nil
	case *int:
		if n == nil {
			return "", fmt.Errorf("num: nil *int")
		}
		return strconv.Itoa(*n), nil
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	case *float64:
		if n == nil {
			return "", fmt.Errorf("num: nil *float64")
		}
		return strconv.FormatFloat(*n, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("num: unsupported %T", v)
	}
}
