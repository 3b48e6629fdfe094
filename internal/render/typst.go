// Package render turns an invoice view into a raster image by compiling a typst
// document straight to PNG.
package render

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/gpinvoice/invoicegen/internal/config"
	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/logger"
	"github.com/h2non/filetype"
)

// basePPI is the CSS reference density; Scale multiplies it
const basePPI = 96

//go:embed templates/invoice.typ
var invoiceTemplate []byte

// Rasterizer renders a view to an opaque image
type Rasterizer interface {
	Rasterize(ctx context.Context, view *View) (image.Image, error)
}

// TypstRasterizer shells out to the typst CLI
type TypstRasterizer struct {
	logger     *logger.Logger
	binaryPath string
	fontDir    string
	workDir    string
	scale      int
}

func NewTypstRasterizer(cfg *config.Configuration, logger *logger.Logger) Rasterizer {
	scale := cfg.Render.Scale
	if scale <= 0 {
		scale = 2
	}
	binary := cfg.Render.TypstBinary
	if binary == "" {
		binary = "typst"
	}
	return &TypstRasterizer{
		logger:     logger,
		binaryPath: binary,
		fontDir:    cfg.Render.FontDir,
		workDir:    cfg.Render.WorkDir,
		scale:      scale,
	}
}

func (r *TypstRasterizer) Rasterize(ctx context.Context, view *View) (image.Image, error) {
	dir, err := os.MkdirTemp(r.workDir, "invoice-render-")
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to create render directory").
			Mark(ierr.ErrExport)
	}
	defer os.RemoveAll(dir)

	data, err := json.Marshal(view)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to encode invoice view").Mark(ierr.ErrExport)
	}

	dataPath := filepath.Join(dir, "data.json")
	templatePath := filepath.Join(dir, "invoice.typ")
	outputPath := filepath.Join(dir, "invoice.png")

	if err := os.WriteFile(dataPath, data, 0o600); err != nil {
		return nil, ierr.WithError(err).WithHint("failed to write invoice data").Mark(ierr.ErrExport)
	}
	if err := os.WriteFile(templatePath, invoiceTemplate, 0o600); err != nil {
		return nil, ierr.WithError(err).WithHint("failed to write invoice template").Mark(ierr.ErrExport)
	}

	cmd := exec.CommandContext(ctx, r.binaryPath, r.args(templatePath, dataPath, outputPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	r.logger.Debugw("rendering invoice view", "invoice_number", view.InvoiceNumber, "command", cmd.String())

	if err := cmd.Run(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("typst compilation failed").
			WithReportableDetails(map[string]any{
				"stderr": stderr.String(),
			}).
			Mark(ierr.ErrExport)
	}

	raw, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to read rendered image").Mark(ierr.ErrExport)
	}
	return decodePNG(raw)
}

func (r *TypstRasterizer) args(templatePath, dataPath, outputPath string) []string {
	args := []string{
		"compile", "--root", "/",
		"--format", "png",
		"--ppi", strconv.Itoa(basePPI * r.scale),
		"--input", "path=" + dataPath,
	}
	if r.fontDir != "" {
		args = append(args, "--font-path", r.fontDir)
	}
	return append(args, templatePath, outputPath)
}

func decodePNG(raw []byte) (image.Image, error) {
	if !filetype.Is(raw, "png") {
		return nil, ierr.NewError("renderer did not produce a png").
			WithHint("failed to render invoice").
			Mark(ierr.ErrExport)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to decode rendered image").Mark(ierr.ErrExport)
	}
	return FlattenOnWhite(img), nil
}

// FlattenOnWhite composites img over an opaque white canvas of the same size
func FlattenOnWhite(img image.Image) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	return out
}
