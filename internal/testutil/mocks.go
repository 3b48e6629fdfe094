package testutil

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/gpinvoice/invoicegen/internal/export"
	"github.com/gpinvoice/invoicegen/internal/render"
	"github.com/gpinvoice/invoicegen/internal/share"
	"github.com/stretchr/testify/mock"
)

var (
	_ render.Rasterizer  = (*MockRasterizer)(nil)
	_ share.NativeSharer = (*MockNativeSharer)(nil)
	_ share.LinkResolver = (*MockLinkResolver)(nil)
	_ export.Saver       = (*MemorySaver)(nil)
)

type MockRasterizer struct {
	mock.Mock
}

func (m *MockRasterizer) Rasterize(ctx context.Context, view *render.View) (image.Image, error) {
	args := m.Called(ctx, view)
	img, _ := args.Get(0).(image.Image)
	return img, args.Error(1)
}

// SampleImage is a white raster with one dark row, the shape of a rendered page
func SampleImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.White)
		}
		img.Set(x, 0, color.Black)
	}
	return img
}

type MockNativeSharer struct {
	mock.Mock
}

func (m *MockNativeSharer) CanShare(mimeType string) bool {
	return m.Called(mimeType).Bool(0)
}

func (m *MockNativeSharer) Share(ctx context.Context, payload share.NativePayload) error {
	return m.Called(ctx, payload).Error(0)
}

type MockLinkResolver struct {
	mock.Mock
}

func (m *MockLinkResolver) FileURL(ctx context.Context, file *export.File, summary share.Summary) (string, error) {
	args := m.Called(ctx, file, summary)
	return args.String(0), args.Error(1)
}

// MemorySaver keeps saved files in memory
type MemorySaver struct {
	mu    sync.Mutex
	files map[string]*export.File
}

func NewMemorySaver() *MemorySaver {
	return &MemorySaver{files: make(map[string]*export.File)}
}

func (s *MemorySaver) Save(_ context.Context, file *export.File) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[file.Name] = file
	return "memory://" + file.Name, nil
}

// Files returns the saved file names
func (s *MemorySaver) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	return names
}

func (s *MemorySaver) Get(name string) (*export.File, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[name]
	return f, ok
}
