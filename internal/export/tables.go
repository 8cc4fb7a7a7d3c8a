package export

import (
	"maps"
	"slices"
)

// table maps a short external code to a host enumeration member.
// Tables are package-level constants in spirit: nothing writes to them
// after initialization.
type table[T HostEnum] map[string]T

func (t table[T]) lookup(code string) (T, bool) {
	v, ok := t[code]
	return v, ok
}

// codes returns the accepted codes in sorted order.
func (t table[T]) codes() []string {
	return slices.Sorted(maps.Keys(t))
}

var colorSpaces = table[ColorSpace]{
	"CMYK": ColorSpaceCMYK,
	"iGry": ColorSpaceGray,
	"rCMY": ColorSpaceRepurposeCMYK,
	"rRGB": ColorSpaceRepurposeRGB,
	"cRGB": ColorSpaceRGB,
	"unFc": ColorSpaceUnchanged,
}

var acrobatCompatibilities = table[AcrobatCompatibility]{
	"4": Acrobat4,
	"5": Acrobat5,
	"6": Acrobat6,
	"7": Acrobat7,
	"8": Acrobat8,
}

var standardsCompliances = table[StandardsCompliance]{
	"1A2001": StandardsPDFX1a2001,
	"1A2003": StandardsPDFX1a2003,
	"32002":  StandardsPDFX32002,
	"32003":  StandardsPDFX32003,
	"42010":  StandardsPDFX42010,
}

var samplings = table[Sampling]{
	"none":              SamplingNone,
	"subSample":         SamplingSubSample,
	"downSample":        SamplingDownSample,
	"bicubicDownSample": SamplingBicubic,
}

var bitmapQualities = table[BitmapQuality]{
	"minimum": QualityMinimum,
	"low":     QualityLow,
	"medium":  QualityMedium,
	"high":    QualityHigh,
	"maximum": QualityMaximum,
	"4bits":   QualityFourBit,
	"8bits":   QualityEightBit,
}

var bitmapCompressions = table[BitmapCompression]{
	"none":         CompressionNone,
	"auto":         CompressionAuto,
	"jpeg":         CompressionJPEG,
	"zip":          CompressionZIP,
	"jpeg2000":     CompressionJPEG2000,
	"autoJpeg2000": CompressionAutoJPEG2000,
}

var monoBitmapCompressions = table[MonoBitmapCompression]{
	"none":  MonoCompressionNone,
	"CCIT3": MonoCompressionCCIT3,
	"CCIT4": MonoCompressionCCIT4,
	"zip":   MonoCompressionZIP,
	"RLE":   MonoCompressionRunLength,
}

// LookupColorSpace translates a colorSpace code.
func LookupColorSpace(code string) (ColorSpace, bool) { return colorSpaces.lookup(code) }

// LookupAcrobatCompatibility translates an acrobatCompatibility code.
func LookupAcrobatCompatibility(code string) (AcrobatCompatibility, bool) {
	return acrobatCompatibilities.lookup(code)
}

// LookupStandardsCompliance translates a standartsCompliance code.
func LookupStandardsCompliance(code string) (StandardsCompliance, bool) {
	return standardsCompliances.lookup(code)
}

// LookupSampling translates a *BitmapSampling code.
func LookupSampling(code string) (Sampling, bool) { return samplings.lookup(code) }

// LookupBitmapQuality translates a *BitmapQuality code.
func LookupBitmapQuality(code string) (BitmapQuality, bool) { return bitmapQualities.lookup(code) }

// LookupBitmapCompression translates a color or grayscale *BitmapCompression code.
func LookupBitmapCompression(code string) (BitmapCompression, bool) {
	return bitmapCompressions.lookup(code)
}

// LookupMonoBitmapCompression translates a monochromeBitmapCompression code.
func LookupMonoBitmapCompression(code string) (MonoBitmapCompression, bool) {
	return monoBitmapCompressions.lookup(code)
}

// OptionCodes returns, per table-backed option key, the codes it accepts.
// The CLI prints this as help text.
func OptionCodes() map[string][]string {
	return map[string][]string{
		OptColorSpace:                  colorSpaces.codes(),
		OptAcrobatCompatibility:        acrobatCompatibilities.codes(),
		OptStandardsCompliance:         standardsCompliances.codes(),
		OptColorBitmapSampling:         samplings.codes(),
		OptColorBitmapQuality:          bitmapQualities.codes(),
		OptColorBitmapCompression:      bitmapCompressions.codes(),
		OptGrayscaleBitmapSampling:     samplings.codes(),
		OptGrayscaleBitmapQuality:      bitmapQualities.codes(),
		OptGrayscaleBitmapCompression:  bitmapCompressions.codes(),
		OptMonochromeBitmapSampling:    samplings.codes(),
		OptMonochromeBitmapCompression: monoBitmapCompressions.codes(),
	}
}
