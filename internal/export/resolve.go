package export

import (
	"errors"

	"github.com/charmbracelet/log"

	"idsexport/internal/options"
)

// Resolver translates an option store into typed host settings.
// The zero value is ready to use and logs through the default logger.
type Resolver struct {
	Logger *log.Logger
	// Required lists option keys that have no default and must be defined.
	Required []string
}

func (r Resolver) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}

// PresetName returns the PDF export preset requested by opts, if any.
// A defined preset name makes every other PDF option irrelevant.
func PresetName(opts options.Store) (string, bool) {
	return opts.Lookup(OptPDFExportPresetName)
}

// ResolvePDF builds the full PDF export record from opts. It never reads
// pdfExportPresetName; callers check PresetName first. Every unknown code
// is reported, joined into one error.
func (r Resolver) ResolvePDF(opts options.Store) (*PDFSettings, error) {
	s := basePDFSettings()
	var errs []error

	for _, key := range r.Required {
		if _, err := opts.Require(key); err != nil {
			errs = append(errs, &MissingRequiredOptionError{Field: key})
		}
	}

	s.AcrobatCompatibility = resolveCode(opts, OptAcrobatCompatibility, acrobatCompatibilities, Acrobat4, &errs)
	s.StandardsCompliance = resolveCode(opts, OptStandardsCompliance, standardsCompliances, StandardsNone, &errs)
	s.PDFColorSpace = resolveCode(opts, OptColorSpace, colorSpaces, ColorSpaceUnchanged, &errs)

	s.ColorBitmapQuality = resolveCode(opts, OptColorBitmapQuality, bitmapQualities, QualityEightBit, &errs)
	s.ColorBitmapCompression = resolveCode(opts, OptColorBitmapCompression, bitmapCompressions, CompressionZIP, &errs)
	s.GrayscaleBitmapQuality = resolveCode(opts, OptGrayscaleBitmapQuality, bitmapQualities, QualityEightBit, &errs)
	s.GrayscaleBitmapCompression = resolveCode(opts, OptGrayscaleBitmapCompression, bitmapCompressions, CompressionZIP, &errs)
	s.MonochromeBitmapCompression = resolveCode(opts, OptMonochromeBitmapCompression, monoBitmapCompressions, MonoCompressionZIP, &errs)

	s.Color.Sampling = resolveCode(opts, OptColorBitmapSampling, samplings, SamplingNone, &errs)
	s.Grayscale.Sampling = resolveCode(opts, OptGrayscaleBitmapSampling, samplings, SamplingNone, &errs)
	s.Monochrome.Sampling = resolveCode(opts, OptMonochromeBitmapSampling, samplings, SamplingNone, &errs)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	s.ColorBars = opts.Bool(OptColorBars, false)
	s.CropMarks = opts.Bool(OptCropMarks, false)
	s.OptimizePDF = opts.Bool(OptOptimizePDF, false)
	s.PageInformationMarks = opts.Bool(OptPageInformationMarks, false)
	s.RegistrationMarks = opts.Bool(OptRegistrationMarks, false)
	s.IncludeBookmarks = opts.Bool(OptIncludeBookmarks, true)
	s.IncludeHyperlinks = opts.Bool(OptIncludeHyperlinks, true)
	s.IncludeICCProfiles = opts.Bool(OptIncludeICCProfiles, true)
	s.ExportLayers = opts.Bool(OptExportLayers, false)
	s.GenerateThumbnails = opts.Bool(OptGenerateThumbnails, false)
	s.ViewPDF = opts.Bool(OptViewPDF, false)
	s.UpdateLinks = opts.Bool(OptUpdateLinks, false)

	s.ColorProfile = opts.String(OptColorProfile, "")
	s.FlattenerPresetName = opts.String(OptFlattenerPresetName, "")

	s.PageMarksOffset = r.float(opts, OptPageMarksOffset, DefaultPageMarksOffset)
	s.Bleed = BleedSpec{
		Top:     r.float(opts, OptBleedTop, 0),
		Bottom:  r.float(opts, OptBleedBottom, 0),
		Inside:  r.float(opts, OptBleedInside, 0),
		Outside: r.float(opts, OptBleedOutside, 0),
	}
	s.UseDocumentBleedWithPDF = !anyDefined(opts, OptBleedTop, OptBleedBottom, OptBleedInside, OptBleedOutside)

	r.derive(s, opts)
	return s, nil
}

// ResolvePackaging builds packaging parameters from opts. Packaging has no
// lookup tables, so it cannot fail on option values.
func (r Resolver) ResolvePackaging(opts options.Store) PackagingParams {
	p := DefaultPackagingParams()
	p.CopyingFonts = opts.Bool(OptCopyingFonts, p.CopyingFonts)
	p.CopyingLinkedGraphics = opts.Bool(OptCopyingLinkedGraphics, p.CopyingLinkedGraphics)
	p.CopyingProfiles = opts.Bool(OptCopyingProfiles, p.CopyingProfiles)
	p.UpdatingGraphics = opts.Bool(OptUpdatingGraphics, p.UpdatingGraphics)
	p.IncludingHiddenLayers = opts.Bool(OptIncludingHiddenLayers, p.IncludingHiddenLayers)
	p.IgnorePreflightErrors = opts.Bool(OptIgnorePreflightErrors, p.IgnorePreflightErrors)
	p.CreatingReport = opts.Bool(OptCreatingReport, p.CreatingReport)
	p.IncludeIDML = opts.Bool(OptIncludeIDML, p.IncludeIDML)
	p.IncludePDF = opts.Bool(OptIncludePDF, p.IncludePDF)
	p.PDFStyle = opts.String(OptPDFStyle, p.PDFStyle)
	p.VersionComments = opts.String(OptVersionComments, p.VersionComments)
	p.ForceSave = opts.Bool(OptForceSave, p.ForceSave)
	return p
}

// basePDFSettings returns the fields no option controls.
func basePDFSettings() *PDFSettings {
	return &PDFSettings{
		PageRange:              PageRangeAll,
		InteractiveElements:    InteractiveDoNotInclude,
		SubsetFontsBelow:       0,
		CompressionType:        CompressNone,
		CompressTextAndLineArt: true,
		CropImagesToFrames:     true,
		ColorTileSize:          DefaultTileSize,
		GrayTileSize:           DefaultTileSize,
		PDFMarkType:            MarkTypeDefault,
		PrinterMarkWeight:      MarkWeight125pt,
	}
}

// resolveCode looks up the option key in t, falling back to def when the
// option is undefined. An unknown code is appended to errs.
func resolveCode[T HostEnum](opts options.Store, key string, t table[T], def T, errs *[]error) T {
	code, ok := opts.Lookup(key)
	if !ok {
		return def
	}
	v, ok := t.lookup(code)
	if !ok {
		*errs = append(*errs, &UnknownOptionValueError{Field: key, Code: code, Valid: t.codes()})
		return def
	}
	return v
}

func (r Resolver) float(opts options.Store, key string, def float64) float64 {
	v, ok := opts.Float(key, def)
	if !ok {
		r.logger().Debug("option is not a number, using default", "option", key, "value", opts.String(key, ""), "default", def)
	}
	return v
}

func (r Resolver) int(opts options.Store, key string, def int) int {
	v, ok := opts.Int(key, def)
	if !ok {
		r.logger().Debug("option is not a number, using default", "option", key, "value", opts.String(key, ""), "default", def)
	}
	return v
}

// positiveInt is int with non-positive values treated as parse failures.
func (r Resolver) positiveInt(opts options.Store, key string, def int) int {
	v := r.int(opts, key, def)
	if v <= 0 {
		r.logger().Debug("option must be positive, using default", "option", key, "value", v, "default", def)
		return def
	}
	return v
}

func anyDefined(opts options.Store, keys ...string) bool {
	for _, k := range keys {
		if opts.Defined(k) {
			return true
		}
	}
	return false
}
