package export

// Option keys understood by the resolvers. standartsCompliance keeps the
// spelling callers have always sent.
const (
	OptPDFExportPresetName = "pdfExportPresetName"

	OptColorBars            = "colorBars"
	OptCropMarks            = "cropMarks"
	OptOptimizePDF          = "optimizePDF"
	OptPageInformationMarks = "pageInformationMarks"
	OptRegistrationMarks    = "registrationMarks"
	OptIncludeBookmarks     = "includeBookmarks"
	OptIncludeHyperlinks    = "includeHyperlinks"
	OptIncludeICCProfiles   = "includeICCProfiles"
	OptExportLayers         = "exportLayers"
	OptGenerateThumbnails   = "generateThumbnails"
	OptViewPDF              = "viewPDF"
	OptUpdateLinks          = "updateLinks"

	OptAcrobatCompatibility = "acrobatCompatibility"
	OptStandardsCompliance  = "standartsCompliance"
	OptColorSpace           = "colorSpace"
	OptColorProfile         = "colorProfile"
	OptFlattenerPresetName  = "flattenerPresetName"

	OptBleedTop     = "bleedTop"
	OptBleedBottom  = "bleedBottom"
	OptBleedInside  = "bleedInside"
	OptBleedOutside = "bleedOutside"

	OptPageMarksOffset = "pageMarksOffset"

	OptColorBitmapSampling         = "colorBitmapSampling"
	OptColorBitmapSamplingDPI      = "colorBitmapSamplingDPI"
	OptColorBitmapQuality          = "colorBitmapQuality"
	OptColorBitmapCompression      = "colorBitmapCompression"
	OptGrayscaleBitmapSampling     = "grayscaleBitmapSampling"
	OptGrayscaleBitmapSamplingDPI  = "grayscaleBitmapSamplingDPI"
	OptGrayscaleBitmapQuality      = "grayscaleBitmapQuality"
	OptGrayscaleBitmapCompression  = "grayscaleBitmapCompression"
	OptMonochromeBitmapSampling    = "monochromeBitmapSampling"
	OptMonochromeBitmapSamplingDPI = "monochromeBitmapSamplingDPI"
	OptMonochromeBitmapCompression = "monochromeBitmapCompression"
)

// Packaging option keys.
const (
	OptCopyingFonts          = "copyingFonts"
	OptCopyingLinkedGraphics = "copyingLinkedGraphics"
	OptCopyingProfiles       = "copyingProfiles"
	OptUpdatingGraphics      = "updatingGraphics"
	OptIncludingHiddenLayers = "includingHiddenLayers"
	OptIgnorePreflightErrors = "ignorePreflightErrors"
	OptCreatingReport        = "creatingReport"
	OptIncludeIDML           = "includeIdml"
	OptIncludePDF            = "includePdf"
	OptPDFStyle              = "pdfStyle"
	OptVersionComments       = "versionComments"
	OptForceSave             = "forceSave"
)

// Documented defaults.
const (
	DefaultColorSamplingDPI      = 150
	DefaultGrayscaleSamplingDPI  = 150
	DefaultMonochromeSamplingDPI = 600
	DefaultPageMarksOffset       = 12
	DefaultTileSize              = 128

	// ThresholdRatio relates a channel's compression threshold to its sampling DPI.
	ThresholdRatio = 1.5
)

// BleedSpec holds the four bleed offsets in points.
type BleedSpec struct {
	Top     float64 `json:"top"`
	Bottom  float64 `json:"bottom"`
	Inside  float64 `json:"inside"`
	Outside float64 `json:"outside"`
}

// IsZero reports whether every offset is exactly zero.
func (b BleedSpec) IsZero() bool {
	return b.Top == 0 && b.Bottom == 0 && b.Inside == 0 && b.Outside == 0
}

// BitmapChannel is the sampling configuration of one image channel.
// SamplingDPI and Threshold are nil whenever Sampling is SamplingNone: the
// host treats their mere presence as meaningful.
type BitmapChannel struct {
	Sampling    Sampling `json:"sampling"`
	SamplingDPI *int     `json:"samplingDPI,omitempty"`
	Threshold   *float64 `json:"threshold,omitempty"`
}

// PDFSettings is the fully resolved PDF export configuration handed to the
// host for exactly one export.
type PDFSettings struct {
	PageRange                PageRange            `json:"pageRange"`
	AcrobatCompatibility     AcrobatCompatibility `json:"acrobatCompatibility"`
	StandardsCompliance      StandardsCompliance  `json:"standardsCompliance"`
	ExportGuidesAndGrids     bool                 `json:"exportGuidesAndGrids"`
	ExportLayers             bool                 `json:"exportLayers"`
	ExportNonPrintingObjects bool                 `json:"exportNonPrintingObjects"`
	ExportReaderSpreads      bool                 `json:"exportReaderSpreads"`
	GenerateThumbnails       bool                 `json:"generateThumbnails"`
	IncludeBookmarks         bool                 `json:"includeBookmarks"`
	IncludeHyperlinks        bool                 `json:"includeHyperlinks"`
	IncludeICCProfiles       bool                 `json:"includeICCProfiles"`
	IncludeSlugWithPDF       bool                 `json:"includeSlugWithPDF"`
	IncludeStructure         bool                 `json:"includeStructure"`
	InteractiveElements      InteractiveElements  `json:"interactiveElements"`
	SubsetFontsBelow         int                  `json:"subsetFontsBelow"`

	ColorBitmapCompression      BitmapCompression     `json:"colorBitmapCompression"`
	ColorBitmapQuality          BitmapQuality         `json:"colorBitmapQuality"`
	Color                       BitmapChannel         `json:"color"`
	GrayscaleBitmapCompression  BitmapCompression     `json:"grayscaleBitmapCompression"`
	GrayscaleBitmapQuality      BitmapQuality         `json:"grayscaleBitmapQuality"`
	Grayscale                   BitmapChannel         `json:"grayscale"`
	MonochromeBitmapCompression MonoBitmapCompression `json:"monochromeBitmapCompression"`
	Monochrome                  BitmapChannel         `json:"monochrome"`

	CompressionType        CompressionType `json:"compressionType"`
	CompressTextAndLineArt bool            `json:"compressTextAndLineArt"`
	CropImagesToFrames     bool            `json:"cropImagesToFrames"`
	OptimizePDF            bool            `json:"optimizePDF"`

	Bleed                   BleedSpec  `json:"bleed"`
	BleedMarks              bool       `json:"bleedMarks"`
	UseDocumentBleedWithPDF bool       `json:"useDocumentBleedWithPDF"`
	ColorBars               bool       `json:"colorBars"`
	ColorTileSize           int        `json:"colorTileSize"`
	GrayTileSize            int        `json:"grayTileSize"`
	CropMarks               bool       `json:"cropMarks"`
	OmitBitmaps             bool       `json:"omitBitmaps"`
	OmitEPS                 bool       `json:"omitEPS"`
	OmitPDF                 bool       `json:"omitPDF"`
	PageInformationMarks    bool       `json:"pageInformationMarks"`
	PageMarksOffset         float64    `json:"pageMarksOffset"`
	PDFMarkType             MarkType   `json:"pdfMarkType"`
	PrinterMarkWeight       MarkWeight `json:"printerMarkWeight"`
	RegistrationMarks       bool       `json:"registrationMarks"`
	ViewPDF                 bool       `json:"viewPDF"`

	PDFColorSpace ColorSpace `json:"pdfColorSpace"`
	// ColorProfile names the destination and PDF/X profile; empty selects
	// UseNoProfile.
	ColorProfile string `json:"colorProfile,omitempty"`

	// FlattenerPresetName is the requested preset; AppliedFlattenerPreset is
	// the name confirmed against the host's preset collection.
	FlattenerPresetName    string `json:"flattenerPresetName,omitempty"`
	AppliedFlattenerPreset string `json:"appliedFlattenerPreset,omitempty"`

	// Set only when the host supports them.
	IgnoreSpreadOverrides *bool `json:"ignoreSpreadOverrides,omitempty"`
	SimulateOverprint     *bool `json:"simulateOverprint,omitempty"`

	// UpdateLinks refreshes out-of-date links before exporting. It is a
	// request-level switch, not a host preference.
	UpdateLinks bool `json:"updateLinks"`
}

// PackagingParams controls packageForPrint.
type PackagingParams struct {
	CopyingFonts          bool   `json:"copyingFonts"`
	CopyingLinkedGraphics bool   `json:"copyingLinkedGraphics"`
	CopyingProfiles       bool   `json:"copyingProfiles"`
	UpdatingGraphics      bool   `json:"updatingGraphics"`
	IncludingHiddenLayers bool   `json:"includingHiddenLayers"`
	IgnorePreflightErrors bool   `json:"ignorePreflightErrors"`
	CreatingReport        bool   `json:"creatingReport"`
	IncludeIDML           bool   `json:"includeIdml"`
	IncludePDF            bool   `json:"includePdf"`
	PDFStyle              string `json:"pdfStyle,omitempty"`
	VersionComments       string `json:"versionComments"`
	ForceSave             bool   `json:"forceSave"`
}

// DefaultPackagingParams returns the packaging defaults.
func DefaultPackagingParams() PackagingParams {
	return PackagingParams{
		CopyingFonts:          true,
		CopyingLinkedGraphics: true,
		CopyingProfiles:       true,
		UpdatingGraphics:      true,
		IncludingHiddenLayers: false,
		IgnorePreflightErrors: true,
		CreatingReport:        true,
		IncludeIDML:           false,
		IncludePDF:            false,
		VersionComments:       "",
		ForceSave:             false,
	}
}
