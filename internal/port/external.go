package port

import "context"

// FieldRect is the bounding box of a located form field on a page.
type FieldRect struct {
	X, Y, W, H float64
}

// LocatedField is one entry of the field-locator service's response.
type LocatedField struct {
	Name string
	Rect FieldRect
	Page int
}

// PageSize is one entry of the field-locator response's page list.
type PageSize struct {
	Width  float64
	Height float64
}

// LocateFieldsResult is the full field-locator response.
type LocateFieldsResult struct {
	Pages  []PageSize
	Fields []LocatedField
}

// FieldLocator is the external PDF form-field locator service (C6
// locate_fields): page geometry and located-field rectangles.
type FieldLocator interface {
	LocateFields(ctx context.Context, pdf []byte) (LocateFieldsResult, error)
}

// FieldExtractor is the external PDF form-field value extractor (C4 step 3):
// returns the raw default-value text of every named form field, which is
// then parsed against the reference grammar. Distinct from FieldLocator,
// which reports geometry, not values.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, pdf []byte) (map[string]string, error)
}

// StampFieldType discriminates how the stamper should render one named
// field: an embedded signature image, literal text, or left blank.
type StampFieldType string

const (
	StampFieldImage StampFieldType = "image"
	StampFieldText  StampFieldType = "text"
	StampFieldBlank StampFieldType = "blank"
)

// StampField is one entry of the map passed to the stamper.
type StampField struct {
	Name  string
	Type  StampFieldType
	Value string // text value, or the multipart part name for an image
}

// StampRequest bundles the source PDF and fully resolved per-field values.
type StampRequest struct {
	PDF    []byte
	Fields []StampField
	Images map[string][]byte // part name -> PNG bytes, for StampFieldImage entries
}

// Stamper is the external PDF stamping/flattening service (C6 stamp_pdf).
type Stamper interface {
	Stamp(ctx context.Context, req StampRequest) ([]byte, error)
}

// AuditRenderer renders a JSON array of audit entries into a PDF page.
type AuditRenderer interface {
	RenderAuditLog(ctx context.Context, entries []byte) ([]byte, error)
}

// Concat joins two PDFs (stamped document + audit log) into one.
type Concat interface {
	ConcatPDF(ctx context.Context, a, b []byte) ([]byte, error)
}

// RenderedPageResult is one page of the page-renderer's response.
type RenderedPageResult struct {
	Page int
	PNG  []byte
}

// PageRenderer rasterizes every page of a PDF (C6 render_pages). Replaces
// local rasterization, which is out of scope.
type PageRenderer interface {
	RenderPages(ctx context.Context, pdf []byte) ([]RenderedPageResult, error)
}

// EmailMessage is a fully-resolved outbound email, ready for MIME
// submission.
type EmailMessage struct {
	To      string
	Subject string
	Body    string
}

// EmailProvider delivers outbound reminder emails (Mailgun-style MIME
// submission). A provider with no server/api-key configured is represented
// by Configured()==false; callers must skip delivery without minting
// state in that case.
type EmailProvider interface {
	Configured() bool
	Send(ctx context.Context, domain, apiKey string, msg EmailMessage) error
}

// WebhookSender posts one JSON payload to one subscriber URL.
type WebhookSender interface {
	Send(ctx context.Context, url string, payload []byte) error
}
