package export

// HostEnum is a member of one of the host scripting DOM enumerations, for
// example PDFColorSpace.CMYK. Enumeration returns the enumeration name and
// Member the member name.
type HostEnum interface {
	Enumeration() string
	Member() string
}

type (
	// ColorSpace is the PDF output color conversion.
	ColorSpace string
	// AcrobatCompatibility is the PDF viewer compatibility level.
	AcrobatCompatibility string
	// StandardsCompliance is the PDF/X profile the output must conform to.
	StandardsCompliance string
	// Sampling is the bitmap resampling mode of one image channel.
	Sampling string
	// BitmapQuality is the compression quality of color and grayscale bitmaps.
	BitmapQuality string
	// BitmapCompression is the compression of color and grayscale bitmaps.
	BitmapCompression string
	// MonoBitmapCompression is the compression of monochrome bitmaps.
	MonoBitmapCompression string
	// PageRange selects exported pages.
	PageRange string
	// InteractiveElements controls export of interactive elements.
	InteractiveElements string
	// CompressionType is the PDF object compression.
	CompressionType string
	// MarkType is the printer mark style.
	MarkType string
	// MarkWeight is the printer mark stroke weight.
	MarkWeight string
	// ProfileSelector is the sentinel used when no named color profile is set.
	ProfileSelector string
)

const (
	ColorSpaceCMYK          ColorSpace = "CMYK"
	ColorSpaceGray          ColorSpace = "GRAY"
	ColorSpaceRepurposeCMYK ColorSpace = "REPURPOSE_CMYK"
	ColorSpaceRepurposeRGB  ColorSpace = "REPURPOSE_RGB"
	ColorSpaceRGB           ColorSpace = "RGB"
	ColorSpaceUnchanged     ColorSpace = "UNCHANGED_COLOR_SPACE"
)

const (
	Acrobat4 AcrobatCompatibility = "ACROBAT_4"
	Acrobat5 AcrobatCompatibility = "ACROBAT_5"
	Acrobat6 AcrobatCompatibility = "ACROBAT_6"
	Acrobat7 AcrobatCompatibility = "ACROBAT_7"
	Acrobat8 AcrobatCompatibility = "ACROBAT_8"
)

const (
	StandardsNone       StandardsCompliance = "NONE"
	StandardsPDFX1a2001 StandardsCompliance = "PDFX1A2001_STANDARD"
	StandardsPDFX1a2003 StandardsCompliance = "PDFX1A2003_STANDARD"
	StandardsPDFX32002  StandardsCompliance = "PDFX32002_STANDARD"
	StandardsPDFX32003  StandardsCompliance = "PDFX32003_STANDARD"
	StandardsPDFX42010  StandardsCompliance = "PDFX42010_STANDARD"
)

const (
	SamplingNone       Sampling = "NONE"
	SamplingSubSample  Sampling = "SUBSAMPLE"
	SamplingDownSample Sampling = "DOWNSAMPLE"
	SamplingBicubic    Sampling = "BICUBIC_DOWNSAMPLE"
)

const (
	QualityMinimum  BitmapQuality = "MINIMUM"
	QualityLow      BitmapQuality = "LOW"
	QualityMedium   BitmapQuality = "MEDIUM"
	QualityHigh     BitmapQuality = "HIGH"
	QualityMaximum  BitmapQuality = "MAXIMUM"
	QualityFourBit  BitmapQuality = "FOUR_BIT"
	QualityEightBit BitmapQuality = "EIGHT_BIT"
)

const (
	CompressionNone         BitmapCompression = "NONE"
	CompressionAuto         BitmapCompression = "AUTO_COMPRESSION"
	CompressionJPEG         BitmapCompression = "JPEG"
	CompressionZIP          BitmapCompression = "ZIP"
	CompressionJPEG2000     BitmapCompression = "JPEG_2000"
	CompressionAutoJPEG2000 BitmapCompression = "AUTOMATIC_JPEG_2000"
)

const (
	MonoCompressionNone      MonoBitmapCompression = "NONE"
	MonoCompressionCCIT3     MonoBitmapCompression = "CCIT3"
	MonoCompressionCCIT4     MonoBitmapCompression = "CCIT4"
	MonoCompressionZIP       MonoBitmapCompression = "ZIP"
	MonoCompressionRunLength MonoBitmapCompression = "RUN_LENGTH"
)

// Fixed members for fields no option controls.
const (
	PageRangeAll            PageRange           = "ALL_PAGES"
	InteractiveDoNotInclude InteractiveElements = "DO_NOT_INCLUDE"
	CompressNone            CompressionType     = "COMPRESS_NONE"
	MarkTypeDefault         MarkType            = "DEFAULT_VALUE"
	MarkWeight125pt         MarkWeight          = "P125PT"
	UseNoProfile            ProfileSelector     = "USE_NO_PROFILE"
)

func (v ColorSpace) Enumeration() string            { return "PDFColorSpace" }
func (v ColorSpace) Member() string                 { return string(v) }
func (v AcrobatCompatibility) Enumeration() string  { return "AcrobatCompatibility" }
func (v AcrobatCompatibility) Member() string       { return string(v) }
func (v StandardsCompliance) Enumeration() string   { return "PDFXStandards" }
func (v StandardsCompliance) Member() string        { return string(v) }
func (v Sampling) Enumeration() string              { return "Sampling" }
func (v Sampling) Member() string                   { return string(v) }
func (v BitmapQuality) Enumeration() string         { return "CompressionQuality" }
func (v BitmapQuality) Member() string              { return string(v) }
func (v BitmapCompression) Enumeration() string     { return "BitmapCompression" }
func (v BitmapCompression) Member() string          { return string(v) }
func (v MonoBitmapCompression) Enumeration() string { return "MonoBitmapCompression" }
func (v MonoBitmapCompression) Member() string      { return string(v) }
func (v PageRange) Enumeration() string             { return "PageRange" }
func (v PageRange) Member() string                  { return string(v) }
func (v InteractiveElements) Enumeration() string   { return "InteractiveElementsOptions" }
func (v InteractiveElements) Member() string        { return string(v) }
func (v CompressionType) Enumeration() string       { return "PDFCompressionType" }
func (v CompressionType) Member() string            { return string(v) }
func (v MarkType) Enumeration() string              { return "MarkTypes" }
func (v MarkType) Member() string                   { return string(v) }
func (v MarkWeight) Enumeration() string            { return "PDFMarkWeight" }
func (v MarkWeight) Member() string                 { return string(v) }
func (v ProfileSelector) Enumeration() string       { return "PDFProfileSelector" }
func (v ProfileSelector) Member() string            { return string(v) }
