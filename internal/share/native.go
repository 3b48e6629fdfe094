package share

import (
	"context"

	"github.com/gpinvoice/invoicegen/internal/export"
)

// NativePayload is handed to the host's share facility
type NativePayload struct {
	File  *export.File
	Title string
	Text  string
}

// NativeSharer is the host's own file sharing facility, if it has one
type NativeSharer interface {
	CanShare(mimeType string) bool
	Share(ctx context.Context, payload NativePayload) error
}

// UnsupportedNativeSharer is used where no native facility exists, which always
// sends the flow to the menu
type UnsupportedNativeSharer struct{}

func (UnsupportedNativeSharer) CanShare(string) bool { return false }

func (UnsupportedNativeSharer) Share(context.Context, NativePayload) error { return nil }
