package export

import (
	"bytes"
	"compress/zlib"
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/logger"
	"github.com/gpinvoice/invoicegen/internal/render"
	"github.com/h2non/filetype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRasterizer struct {
	img image.Image
	err error
}

func (s *stubRasterizer) Rasterize(context.Context, *render.View) (image.Image, error) {
	return s.img, s.err
}

type recordingSaver struct {
	files []*File
}

func (s *recordingSaver) Save(_ context.Context, file *File) (string, error) {
	s.files = append(s.files, file)
	return "memory://" + file.Name, nil
}

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.Black)
	}
	return img
}

func newTestExporter(r render.Rasterizer, s Saver) *Exporter {
	e := NewExporter(r, s, logger.NewNoopLogger())
	e.now = func() time.Time { return time.Date(2024, 1, 15, 18, 30, 0, 0, time.UTC) }
	return e
}

func TestGenerateFilename(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		meta Meta
		ext  string
		want string
	}{
		{
			name: "number and client",
			meta: Meta{InvoiceNumber: "GP-0001", ClientName: "Acme Co"},
			ext:  "pdf",
			want: "GP_0001_Acme_Co_2024-01-15.pdf",
		},
		{
			name: "missing both",
			meta: Meta{},
			ext:  "png",
			want: "invoice_client_2024-01-15.png",
		},
		{
			name: "punctuation",
			meta: Meta{InvoiceNumber: "GP/7", ClientName: "O'Brien & Sons, Ltd."},
			ext:  "jpeg",
			want: "GP_7_O_Brien___Sons__Ltd__2024-01-15.jpeg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateFilename(tt.meta, tt.ext, now))
		})
	}
}

func TestExportPDF(t *testing.T) {
	saver := &recordingSaver{}
	e := newTestExporter(&stubRasterizer{img: testImage(420, 600)}, saver)

	res, err := e.ExportPDF(context.Background(), &render.View{}, Meta{InvoiceNumber: "GP-0001", ClientName: "Acme Co"})
	require.NoError(t, err)

	assert.Equal(t, "GP_0001_Acme_Co_2024-01-15.pdf", res.Filename)
	assert.Equal(t, "memory://GP_0001_Acme_Co_2024-01-15.pdf", res.Location)
	require.Len(t, saver.files, 1)
	assert.Equal(t, MIMETypePDF, saver.files[0].MIMEType)
	assert.True(t, filetype.Is(saver.files[0].Data, "pdf"))
	assert.Equal(t, 1, bytes.Count(saver.files[0].Data, []byte("/Type /Page\n")))
}

func TestExportImage(t *testing.T) {
	saver := &recordingSaver{}
	e := newTestExporter(&stubRasterizer{img: testImage(40, 20)}, saver)
	ctx := context.Background()

	res, err := e.ExportImage(ctx, &render.View{}, Meta{}, ImageFormatPNG)
	require.NoError(t, err)
	assert.Equal(t, "invoice_client_2024-01-15.png", res.Filename)
	assert.True(t, filetype.Is(saver.files[0].Data, "png"))

	res, err = e.ExportImage(ctx, &render.View{}, Meta{}, ImageFormatJPEG)
	require.NoError(t, err)
	assert.Equal(t, "invoice_client_2024-01-15.jpeg", res.Filename)
	assert.True(t, filetype.Is(saver.files[1].Data, "jpg"))

	_, err = e.ExportImage(ctx, &render.View{}, Meta{}, "gif")
	assert.True(t, ierr.IsValidation(err))
	assert.Len(t, saver.files, 2)
}

func TestExportFailureSavesNothing(t *testing.T) {
	tests := []struct {
		name       string
		rasterizer *stubRasterizer
	}{
		{name: "render error", rasterizer: &stubRasterizer{err: errors.New("font missing")}},
		{name: "empty image", rasterizer: &stubRasterizer{img: image.NewRGBA(image.Rect(0, 0, 0, 0))}},
		{name: "nil image", rasterizer: &stubRasterizer{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			e := newTestExporter(tt.rasterizer, NewFilesystemSaver(dir))

			_, err := e.ExportPDF(context.Background(), &render.View{}, Meta{InvoiceNumber: "GP-0001"})
			require.Error(t, err)
			assert.True(t, ierr.IsExport(err))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestFilesystemSaver(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	s := NewFilesystemSaver(dir)

	location, err := s.Save(context.Background(), &File{Name: "GP_0001_Acme_2024-01-15.pdf", Data: []byte("%PDF-1.3")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "GP_0001_Acme_2024-01-15.pdf"), location)

	data, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.3"), data)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

// imagePlacement matches the image transform gofpdf writes into the page content
var imagePlacement = regexp.MustCompile(`q (-?[\d.]+) 0 0 (-?[\d.]+) (-?[\d.]+) (-?[\d.]+) cm /I`)

// pageContent inflates every flate compressed stream in a pdf and joins them
func pageContent(t *testing.T, data []byte) string {
	t.Helper()
	var content strings.Builder
	rest := data
	for {
		start := bytes.Index(rest, []byte("stream\n"))
		if start < 0 {
			break
		}
		rest = rest[start+len("stream\n"):]
		end := bytes.Index(rest, []byte("\nendstream"))
		require.GreaterOrEqual(t, end, 0)

		if zr, err := zlib.NewReader(bytes.NewReader(rest[:end])); err == nil {
			raw, err := io.ReadAll(zr)
			if err == nil {
				content.Write(raw)
				content.WriteByte('\n')
			}
		}
		rest = rest[end+len("\nendstream"):]
	}
	return content.String()
}

func TestEncodePDFScalesToPageWidth(t *testing.T) {
	// points per millimetre, and the A4 page gofpdf emits (595.28 x 841.89 pt)
	const k = 72 / 25.4
	const pageHeight = 841.89

	tests := []struct {
		name           string
		width, height  int
		wantHeightMM   float64
		wantBottomLeft float64
	}{
		{name: "landscape raster", width: 100, height: 50, wantHeightMM: 105, wantBottomLeft: pageHeight - 105*k},
		{name: "taller than the page is clipped", width: 100, height: 200, wantHeightMM: 420, wantBottomLeft: pageHeight - 420*k},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodePDF(testImage(tt.width, tt.height))
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
			assert.Contains(t, string(data), "/MediaBox [0 0 595.28 841.89]")

			m := imagePlacement.FindStringSubmatch(pageContent(t, data))
			require.NotNil(t, m, "image placement not found in page content")

			nums := make([]float64, 4)
			for i := range nums {
				nums[i], err = strconv.ParseFloat(m[i+1], 64)
				require.NoError(t, err)
			}
			assert.InDelta(t, pageWidth*k, nums[0], 0.001)
			assert.InDelta(t, tt.wantHeightMM*k, nums[1], 0.001)
			assert.InDelta(t, 0, nums[2], 0.001)
			assert.InDelta(t, tt.wantBottomLeft, nums[3], 0.01)
		})
	}
}
