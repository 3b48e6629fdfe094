// Package export turns an invoice view into a downloadable PDF or image file.
package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"regexp"
	"time"

	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/logger"
	"github.com/gpinvoice/invoicegen/internal/render"
	"github.com/gpinvoice/invoicegen/internal/types"
	"github.com/jung-kurt/gofpdf"
)

const (
	// A4 portrait width, millimetres
	pageWidth = 210.0

	MIMETypePDF  = "application/pdf"
	MIMETypePNG  = "image/png"
	MIMETypeJPEG = "image/jpeg"
)

// ImageFormat is the raster encoding of an image export
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "png"
	ImageFormatJPEG ImageFormat = "jpeg"
)

func (f ImageFormat) Validate() error {
	switch f {
	case ImageFormatPNG, ImageFormatJPEG:
		return nil
	}
	return ierr.NewErrorf("unsupported image format %q", string(f)).
		WithHint("Image format must be png or jpeg").
		Mark(ierr.ErrValidation)
}

// Meta identifies the exported invoice in its filename
type Meta struct {
	InvoiceNumber string `json:"invoice_number"`
	ClientName    string `json:"client_name"`
}

// File is a fully encoded export
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Result reports a saved export
type Result struct {
	Filename string `json:"filename"`
	Location string `json:"location"`
	Size     int    `json:"size"`
}

// Exporter renders views and hands the encoded bytes to a Saver. Nothing reaches
// the saver unless rendering and encoding both succeeded.
type Exporter struct {
	rasterizer render.Rasterizer
	saver      Saver
	logger     *logger.Logger
	now        func() time.Time
}

func NewExporter(rasterizer render.Rasterizer, saver Saver, logger *logger.Logger) *Exporter {
	return &Exporter{
		rasterizer: rasterizer,
		saver:      saver,
		logger:     logger,
		now:        time.Now,
	}
}

// ExportPDF renders the view into a single A4 page and saves it
func (e *Exporter) ExportPDF(ctx context.Context, view *render.View, meta Meta) (*Result, error) {
	file, err := e.GeneratePDFBlob(ctx, view, meta)
	if err != nil {
		return nil, err
	}
	return e.save(ctx, file)
}

// ExportImage renders the view and saves it as png or jpeg
func (e *Exporter) ExportImage(ctx context.Context, view *render.View, meta Meta, format ImageFormat) (*Result, error) {
	file, err := e.GenerateImageBlob(ctx, view, meta, format)
	if err != nil {
		return nil, err
	}
	return e.save(ctx, file)
}

// GeneratePDFBlob produces the PDF bytes without saving them
func (e *Exporter) GeneratePDFBlob(ctx context.Context, view *render.View, meta Meta) (*File, error) {
	img, err := e.rasterize(ctx, view)
	if err != nil {
		return nil, err
	}

	data, err := EncodePDF(img)
	if err != nil {
		return nil, err
	}

	return &File{
		Name:     GenerateFilename(meta, "pdf", e.now()),
		MIMEType: MIMETypePDF,
		Data:     data,
	}, nil
}

// GenerateImageBlob produces the image bytes without saving them
func (e *Exporter) GenerateImageBlob(ctx context.Context, view *render.View, meta Meta, format ImageFormat) (*File, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}

	img, err := e.rasterize(ctx, view)
	if err != nil {
		return nil, err
	}

	var (
		buf  bytes.Buffer
		mime = MIMETypePNG
		ext  = "png"
	)
	if format == ImageFormatJPEG {
		mime, ext = MIMETypeJPEG, "jpeg"
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100})
	} else {
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("failed to encode %s image", ext).
			Mark(ierr.ErrExport)
	}

	return &File{
		Name:     GenerateFilename(meta, ext, e.now()),
		MIMEType: mime,
		Data:     buf.Bytes(),
	}, nil
}

// Save hands an already generated file to the saver
func (e *Exporter) Save(ctx context.Context, file *File) (*Result, error) {
	return e.save(ctx, file)
}

func (e *Exporter) rasterize(ctx context.Context, view *render.View) (image.Image, error) {
	img, err := e.rasterizer.Rasterize(ctx, view)
	if err != nil {
		if ierr.IsExport(err) {
			return nil, err
		}
		return nil, ierr.WithError(err).WithHint("failed to render invoice").Mark(ierr.ErrExport)
	}
	if img == nil || img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		return nil, ierr.NewError("rendered image is empty").
			WithHint("failed to render invoice").
			Mark(ierr.ErrExport)
	}
	return render.FlattenOnWhite(img), nil
}

func (e *Exporter) save(ctx context.Context, file *File) (*Result, error) {
	location, err := e.saver.Save(ctx, file)
	if err != nil {
		return nil, err
	}

	e.logger.Infow("invoice exported",
		"filename", file.Name,
		"mime_type", file.MIMEType,
		"size", len(file.Data),
		"location", location,
	)

	return &Result{
		Filename: file.Name,
		Location: location,
		Size:     len(file.Data),
	}, nil
}

// EncodePDF places img at the top left of one A4 portrait page, scaled to the
// page width. Content taller than the page is clipped.
func EncodePDF(img image.Image) ([]byte, error) {
	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, img, &jpeg.Options{Quality: 100}); err != nil {
		return nil, ierr.WithError(err).WithHint("failed to encode invoice image").Mark(ierr.ErrExport)
	}

	b := img.Bounds()
	height := float64(b.Dy()) * pageWidth / float64(b.Dx())

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader("invoice", opts, &jpg)
	pdf.ImageOptions("invoice", 0, 0, pageWidth, height, false, opts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, ierr.WithError(err).WithHint("failed to write pdf").Mark(ierr.ErrExport)
	}
	return out.Bytes(), nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// GenerateFilename builds {invoice}_{client}_{yyyy-mm-dd}.{ext} with every
// character outside [a-zA-Z0-9] replaced by an underscore
func GenerateFilename(meta Meta, ext string, now time.Time) string {
	number := meta.InvoiceNumber
	if number == "" {
		number = "invoice"
	}
	client := meta.ClientName
	if client == "" {
		client = "client"
	}
	return fmt.Sprintf("%s_%s_%s.%s",
		unsafeFilenameChars.ReplaceAllString(number, "_"),
		unsafeFilenameChars.ReplaceAllString(client, "_"),
		types.FormatDate(now),
		ext,
	)
}
