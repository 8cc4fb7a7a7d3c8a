package indesign

import (
	"strings"
	"testing"

	"idsexport/internal/export"
	"idsexport/internal/options"
)

func TestBuildScriptExportPDF(t *testing.T) {
	settings, err := export.Resolver{}.ResolvePDF(options.New(map[string]string{
		export.OptColorSpace:               "CMYK",
		export.OptColorBitmapSampling:      "subSample",
		export.OptColorProfile:             `Coated "FOGRA39"`,
		export.OptStandardsCompliance:      "1A2001",
		export.OptMonochromeBitmapSampling: "none",
	}))
	if err != nil {
		t.Fatalf("ResolvePDF() error = %v", err)
	}
	if err := export.Finalize(settings, export.Environment{
		Version:          "18.0",
		Capabilities:     export.CapabilitiesForVersion("18.0"),
		FlattenerPresets: []string{"[High Resolution]"},
	}); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	s, err := BuildScript(ScriptExportPDF, settings, map[string]string{"document": "a.indd"})
	if err != nil {
		t.Fatalf("BuildScript() error = %v", err)
	}
	for _, want := range []string{
		`app.documents.itemByName(app.scriptArgs.get("document"))`,
		"prefs.pdfColorSpace = PDFColorSpace.CMYK;",
		"prefs.standardsCompliance = PDFXStandards.PDFX1A2001_STANDARD;",
		"prefs.colorBitmapSampling = Sampling.SUBSAMPLE;",
		"prefs.colorBitmapSamplingDPI = 150;",
		"prefs.thresholdToCompressColor = 225;",
		"prefs.monochromeBitmapCompression = MonoBitmapCompression.ZIP;",
		"prefs.bleedMarks = true;",
		"prefs.pageMarksOffset = 12;",
		`prefs.pdfDestinationProfile = "Coated \"FOGRA39\"";`,
		"prefs.ignoreSpreadOverrides = false;",
		"prefs.simulateOverprint = false;",
		`app.flattenerPresets.itemByName("[High Resolution]")`,
		"ExportFormat.PDF_TYPE",
	} {
		if !strings.Contains(s.Text, want) {
			t.Errorf("script missing %q", want)
		}
	}
	for _, absent := range []string{"grayscaleBitmapSamplingDPI", "thresholdToCompressGray", "monochromeBitmapSamplingDPI", "with("} {
		if strings.Contains(s.Text, absent) {
			t.Errorf("script should not contain %q", absent)
		}
	}
	if s.Args["document"] != "a.indd" || s.Name != ScriptExportPDF {
		t.Errorf("script = %+v", s)
	}
}

func TestBuildScriptExportPDFWithoutCapabilities(t *testing.T) {
	settings, err := export.Resolver{}.ResolvePDF(options.New(nil))
	if err != nil {
		t.Fatalf("ResolvePDF() error = %v", err)
	}
	s, err := BuildScript(ScriptExportPDF, settings, nil)
	if err != nil {
		t.Fatalf("BuildScript() error = %v", err)
	}
	for _, absent := range []string{"ignoreSpreadOverrides", "simulateOverprint", "appliedFlattenerPreset", "SamplingDPI"} {
		if strings.Contains(s.Text, absent) {
			t.Errorf("script should not contain %q", absent)
		}
	}
	if !strings.Contains(s.Text, "prefs.pdfXProfile = PDFProfileSelector.USE_NO_PROFILE;") {
		t.Error("missing profile selector sentinel")
	}
}

func TestBuildScriptPackage(t *testing.T) {
	params := export.DefaultPackagingParams()
	params.VersionComments = "release 2"
	s, err := BuildScript(ScriptPackage, params, nil)
	if err != nil {
		t.Fatalf("BuildScript() error = %v", err)
	}
	if !strings.Contains(s.Text, `"release 2"`) || !strings.Contains(s.Text, "doc.packageForPrint(dir,") {
		t.Errorf("package script:\n%s", s.Text)
	}
}

func TestBuildScriptUnknown(t *testing.T) {
	if _, err := BuildScript("format_disk", nil, nil); err == nil {
		t.Fatal("expected error for unknown script")
	}
}
