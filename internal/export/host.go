package export

import "context"

// Host is the document-editing application. Implementations own all
// rendering and file writing; this package only calls them.
type Host interface {
	Open(ctx context.Context, path string) (Document, error)
	Environment(ctx context.Context) (Environment, error)
}

// Environment is what the host reports about itself.
type Environment struct {
	Version          string       `json:"version"`
	Capabilities     Capabilities `json:"capabilities"`
	FlattenerPresets []string     `json:"flattenerPresets"`
	PDFExportPresets []string     `json:"pdfExportPresets"`
}

// Document is one open document. Close must be called exactly once.
type Document interface {
	ExportPDF(ctx context.Context, dest string, settings *PDFSettings) error
	ExportPDFPreset(ctx context.Context, dest, preset string) error
	// Export writes a JPEG or IDML rendition.
	Export(ctx context.Context, kind Format, dest string) error
	PackageForPrint(ctx context.Context, dir string, params PackagingParams) error
	Save(ctx context.Context, dest string) error
	Links(ctx context.Context) ([]Link, error)
	Close(ctx context.Context) error
}

// LinkStatus mirrors the host LinkStatus enumeration.
type LinkStatus string

const (
	LinkNormal       LinkStatus = "NORMAL"
	LinkOutOfDate    LinkStatus = "LINK_OUT_OF_DATE"
	LinkMissing      LinkStatus = "LINK_MISSING"
	LinkEmbedded     LinkStatus = "LINK_EMBEDDED"
	LinkInaccessible LinkStatus = "LINK_INACCESSIBLE"
)

// Link is one placed asset of a document.
type Link interface {
	Name() string
	Status() LinkStatus
	Update(ctx context.Context) error
}
