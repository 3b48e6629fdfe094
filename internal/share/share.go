// Package share delivers an exported invoice PDF, natively when the host supports
// file sharing and otherwise through a menu of link based channels.
package share

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/export"
	"github.com/gpinvoice/invoicegen/internal/logger"
	"github.com/gpinvoice/invoicegen/internal/render"
	"github.com/h2non/filetype"
)

const (
	MethodNative = "native"
	MethodMenu   = "menu"
)

// ChannelKind is one entry of the fallback share menu
type ChannelKind string

const (
	ChannelEmail    ChannelKind = "email"
	ChannelWhatsApp ChannelKind = "whatsapp"
	ChannelTelegram ChannelKind = "telegram"
	ChannelDownload ChannelKind = "download"
)

func (k ChannelKind) Validate() error {
	switch k {
	case ChannelEmail, ChannelWhatsApp, ChannelTelegram, ChannelDownload:
		return nil
	}
	return ierr.NewErrorf("unknown share channel %q", string(k)).
		WithHint("Share channel must be email, whatsapp, telegram or download").
		Mark(ierr.ErrValidation)
}

// NeedsFile reports whether executing the channel uses the generated PDF
func (k ChannelKind) NeedsFile() bool {
	return k == ChannelTelegram || k == ChannelDownload
}

// Option is a menu entry offered to the user
type Option struct {
	Kind ChannelKind `json:"kind"`
	Name string      `json:"name"`
}

// MenuOptions are offered in this order
var MenuOptions = []Option{
	{Kind: ChannelEmail, Name: "Email"},
	{Kind: ChannelWhatsApp, Name: "WhatsApp"},
	{Kind: ChannelTelegram, Name: "Telegram"},
	{Kind: ChannelDownload, Name: "Download PDF"},
}

// Summary is what the share messages say about the invoice
type Summary struct {
	InvoiceNumber string `json:"invoice_number"`
	ClientName    string `json:"client_name"`
	Currency      string `json:"currency"`
	Total         string `json:"total"`
	// DownloadPath is the API path serving this invoice's PDF
	DownloadPath string `json:"download_path"`
}

func SummaryFromView(v *render.View, downloadPath string) Summary {
	return Summary{
		InvoiceNumber: v.InvoiceNumber,
		ClientName:    v.InvoiceForName,
		Currency:      v.Currency,
		Total:         v.Total,
		DownloadPath:  downloadPath,
	}
}

func (s Summary) Meta() export.Meta {
	return export.Meta{InvoiceNumber: s.InvoiceNumber, ClientName: s.ClientName}
}

// Result is the outcome of SharePDF
type Result struct {
	Success bool     `json:"success"`
	Method  string   `json:"method"`
	Options []Option `json:"options,omitempty"`
	// File is the generated PDF, kept for executing a menu channel
	File *export.File `json:"-"`
}

// Channel is a chosen menu entry together with what it shares
type Channel struct {
	Kind    ChannelKind
	Summary Summary
	File    *export.File
}

// ChannelResult is the outcome of executing a channel. URL is set for link based
// channels, Location for downloads.
type ChannelResult struct {
	Success  bool        `json:"success"`
	Method   ChannelKind `json:"method"`
	URL      string      `json:"url,omitempty"`
	Location string      `json:"location,omitempty"`
	Filename string      `json:"filename,omitempty"`
}

// Sharer runs the share flow. No step is retried.
type Sharer struct {
	exporter *export.Exporter
	native   NativeSharer
	links    LinkResolver
	logger   *logger.Logger
}

func NewSharer(exporter *export.Exporter, native NativeSharer, links LinkResolver, logger *logger.Logger) *Sharer {
	if native == nil {
		native = UnsupportedNativeSharer{}
	}
	return &Sharer{
		exporter: exporter,
		native:   native,
		links:    links,
		logger:   logger,
	}
}

// SharePDF generates the PDF and shares it natively when possible. Otherwise it
// returns the menu; nothing has been sent at that point.
func (s *Sharer) SharePDF(ctx context.Context, view *render.View, summary Summary) (*Result, error) {
	file, err := s.exporter.GeneratePDFBlob(ctx, view, summary.Meta())
	if err != nil {
		return nil, err
	}

	mime := file.MIMEType
	if kind, err := filetype.Match(file.Data); err == nil && kind != filetype.Unknown {
		mime = kind.MIME.Value
	}

	if s.native.CanShare(mime) {
		err := s.native.Share(ctx, NativePayload{
			File:  file,
			Title: fmt.Sprintf("Invoice %s", summary.InvoiceNumber),
			Text:  fmt.Sprintf("Invoice for %s - Total: %s %s", summary.ClientName, summary.Currency, summary.Total),
		})
		if err != nil {
			return nil, ierr.WithError(err).WithHint("failed to share invoice").Mark(ierr.ErrExport)
		}
		s.logger.Infow("invoice shared natively", "invoice_number", summary.InvoiceNumber)
		return &Result{Success: true, Method: MethodNative, File: file}, nil
	}

	return &Result{
		Success: true,
		Method:  MethodMenu,
		Options: append([]Option(nil), MenuOptions...),
		File:    file,
	}, nil
}

// Execute performs one menu channel
func (s *Sharer) Execute(ctx context.Context, ch Channel) (*ChannelResult, error) {
	if err := ch.Kind.Validate(); err != nil {
		return nil, err
	}
	sum := ch.Summary
	result := &ChannelResult{Success: true, Method: ch.Kind}

	switch ch.Kind {
	case ChannelEmail:
		subject := fmt.Sprintf("Invoice %s - %s", sum.InvoiceNumber, sum.ClientName)
		body := fmt.Sprintf("Dear %s,\n\nPlease find attached invoice %s.\n\nTotal: %s %s\n\nBest regards",
			sum.ClientName, sum.InvoiceNumber, sum.Currency, sum.Total)
		result.URL = "mailto:?subject=" + encodeURIComponent(subject) + "&body=" + encodeURIComponent(body)

	case ChannelWhatsApp:
		text := fmt.Sprintf("Invoice %s for %s\nTotal: %s %s\n\nPlease check your email for the PDF invoice.",
			sum.InvoiceNumber, sum.ClientName, sum.Currency, sum.Total)
		result.URL = "https://wa.me/?text=" + encodeURIComponent(text)

	case ChannelTelegram:
		if ch.File == nil {
			return nil, missingFile(ch.Kind)
		}
		fileURL, err := s.links.FileURL(ctx, ch.File, sum)
		if err != nil {
			return nil, err
		}
		text := fmt.Sprintf("Invoice %s for %s\nTotal: %s %s", sum.InvoiceNumber, sum.ClientName, sum.Currency, sum.Total)
		result.URL = "https://t.me/share/url?url=" + encodeURIComponent(fileURL) + "&text=" + encodeURIComponent(text)

	case ChannelDownload:
		if ch.File == nil {
			return nil, missingFile(ch.Kind)
		}
		saved, err := s.exporter.Save(ctx, ch.File)
		if err != nil {
			return nil, err
		}
		result.Location = saved.Location
		result.Filename = saved.Filename
	}

	s.logger.Infow("share channel executed",
		"channel", ch.Kind,
		"invoice_number", sum.InvoiceNumber,
	)
	return result, nil
}

func missingFile(kind ChannelKind) error {
	return ierr.NewErrorf("%s share needs the generated file", kind).
		WithHint("Generate the PDF before sharing it").
		Mark(ierr.ErrInvalidOperation)
}

// encodeURIComponent escapes s for a URI component, spaces as %20
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
