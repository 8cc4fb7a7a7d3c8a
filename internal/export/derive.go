package export

import (
	"slices"

	"idsexport/internal/options"
)

// derive fills the fields that depend on already-resolved ones.
func (r Resolver) derive(s *PDFSettings, opts options.Store) {
	s.Color = r.channel(opts, s.Color.Sampling, OptColorBitmapSamplingDPI, DefaultColorSamplingDPI)
	s.Grayscale = r.channel(opts, s.Grayscale.Sampling, OptGrayscaleBitmapSamplingDPI, DefaultGrayscaleSamplingDPI)
	s.Monochrome = r.channel(opts, s.Monochrome.Sampling, OptMonochromeBitmapSamplingDPI, DefaultMonochromeSamplingDPI)
	s.BleedMarks = s.Bleed.IsZero()
}

// channel leaves DPI and threshold unset when sampling is off; the host
// reads their presence as a request to resample.
func (r Resolver) channel(opts options.Store, sampling Sampling, dpiKey string, def int) BitmapChannel {
	ch := BitmapChannel{Sampling: sampling}
	if sampling == SamplingNone {
		return ch
	}
	dpi := r.positiveInt(opts, dpiKey, def)
	threshold := float64(dpi) * ThresholdRatio
	ch.SamplingDPI = &dpi
	ch.Threshold = &threshold
	return ch
}

// Capabilities describes optional host preferences. Older hosts reject
// writes to these properties.
type Capabilities struct {
	SpreadOverrides   bool `json:"spreadOverrides"`
	SimulateOverprint bool `json:"simulateOverprint"`
}

// CapabilitiesForVersion derives capabilities from a host version string
// such as "7.0.1.105" or "18.5".
func CapabilitiesForVersion(version string) Capabilities {
	major := 0
	for _, c := range version {
		if c < '0' || c > '9' {
			break
		}
		major = major*10 + int(c-'0')
	}
	supported := major >= 7
	return Capabilities{SpreadOverrides: supported, SimulateOverprint: supported}
}

// Finalize applies the host-dependent fields once the host environment is
// known: the flattener preset and the capability-gated preferences.
func Finalize(s *PDFSettings, env Environment) error {
	switch {
	case s.FlattenerPresetName != "":
		if !slices.Contains(env.FlattenerPresets, s.FlattenerPresetName) {
			return &PresetNotFoundError{Kind: "flattener", Name: s.FlattenerPresetName}
		}
		s.AppliedFlattenerPreset = s.FlattenerPresetName
	case len(env.FlattenerPresets) > 0:
		s.AppliedFlattenerPreset = env.FlattenerPresets[0]
	}

	if env.Capabilities.SpreadOverrides {
		s.IgnoreSpreadOverrides = new(bool)
	}
	if env.Capabilities.SimulateOverprint {
		s.SimulateOverprint = new(bool)
	}
	return nil
}
