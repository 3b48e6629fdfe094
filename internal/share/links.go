package share

import (
	"context"
	"strings"

	"github.com/gpinvoice/invoicegen/internal/config"
	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/export"
	"github.com/gpinvoice/invoicegen/internal/s3"
)

// LinkResolver produces a URL other people can open to fetch the shared file
type LinkResolver interface {
	FileURL(ctx context.Context, file *export.File, summary Summary) (string, error)
}

// NewLinkResolver prefers presigned S3 links and falls back to this service's own
// download endpoint
func NewLinkResolver(cfg *config.Configuration, s3Service s3.Service) LinkResolver {
	if s3Service != nil {
		return &PresignedLinks{service: s3Service}
	}
	return &PublicLinks{baseURL: cfg.Share.PublicBaseURL}
}

// PresignedLinks uploads the file and returns a time limited link to it. A file
// already in the bucket under the same name is not uploaded again.
type PresignedLinks struct {
	service s3.Service
}

func (l *PresignedLinks) FileURL(ctx context.Context, file *export.File, _ Summary) (string, error) {
	exists, err := l.service.Exists(ctx, file.Name)
	if err != nil {
		return "", err
	}
	if !exists {
		if _, err := l.service.UploadDocument(ctx, s3.NewDocument(file.Name, file.Data, file.MIMEType)); err != nil {
			return "", err
		}
	}
	return l.service.GetPresignedUrl(ctx, file.Name)
}

// PublicLinks points at the API's PDF endpoint for the invoice
type PublicLinks struct {
	baseURL string
}

func (l *PublicLinks) FileURL(_ context.Context, _ *export.File, summary Summary) (string, error) {
	if summary.DownloadPath == "" {
		return "", ierr.NewError("no download path for shared file").
			WithHint("Save the invoice before sharing it by link").
			Mark(ierr.ErrInvalidOperation)
	}
	return strings.TrimSuffix(l.baseURL, "/") + summary.DownloadPath, nil
}
