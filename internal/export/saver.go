package export

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gpinvoice/invoicegen/internal/config"
	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/gpinvoice/invoicegen/internal/s3"
	"github.com/gpinvoice/invoicegen/internal/types"
)

// Saver persists a finished export and returns where it went
type Saver interface {
	Save(ctx context.Context, file *File) (string, error)
}

// NewSaver picks the saver configured under export.saver
func NewSaver(cfg *config.Configuration, s3Service s3.Service) (Saver, error) {
	switch cfg.Export.Saver {
	case types.SaverS3:
		if s3Service == nil {
			return nil, ierr.NewError("s3 saver requires s3.enabled").
				WithHint("Enable S3 or use the filesystem saver").
				Mark(ierr.ErrValidation)
		}
		return NewS3Saver(s3Service), nil
	default:
		return NewFilesystemSaver(cfg.Export.OutputDir), nil
	}
}

// FilesystemSaver writes exports into a directory. A file only appears under its
// final name once it is complete.
type FilesystemSaver struct {
	dir string
}

func NewFilesystemSaver(dir string) *FilesystemSaver {
	return &FilesystemSaver{dir: dir}
}

func (s *FilesystemSaver) Save(_ context.Context, file *File) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", ierr.WithError(err).WithHint("failed to create export directory").Mark(ierr.ErrExport)
	}

	tmp, err := os.CreateTemp(s.dir, ".export-*")
	if err != nil {
		return "", ierr.WithError(err).WithHint("failed to create export file").Mark(ierr.ErrExport)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(file.Data); err != nil {
		tmp.Close()
		return "", ierr.WithError(err).WithHint("failed to write export file").Mark(ierr.ErrExport)
	}
	if err := tmp.Close(); err != nil {
		return "", ierr.WithError(err).WithHint("failed to write export file").Mark(ierr.ErrExport)
	}

	dest := filepath.Join(s.dir, filepath.Base(file.Name))
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", ierr.WithError(err).WithHint("failed to save export file").Mark(ierr.ErrExport)
	}
	return dest, nil
}

// S3Saver uploads exports to the configured bucket
type S3Saver struct {
	service s3.Service
}

func NewS3Saver(service s3.Service) *S3Saver {
	return &S3Saver{service: service}
}

func (s *S3Saver) Save(ctx context.Context, file *File) (string, error) {
	key, err := s.service.UploadDocument(ctx, s3.NewDocument(file.Name, file.Data, file.MIMEType))
	if err != nil {
		return "", ierr.WithError(err).WithHint("failed to upload export").Mark(ierr.ErrExport)
	}
	return key, nil
}
