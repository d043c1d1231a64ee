package port

import (
	"context"

	"github.com/rafaelleal24/catalog/internal/core/dto"
)

//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock

// StagedImage is an uploaded file already written to the upload directory.
type StagedImage struct {
	Filename     string
	PublicURL    string
	DetectedType string
}

type ImageStore interface {
	Stage(ctx context.Context, upload *dto.ImageUpload) (*StagedImage, error)
	Discard(ctx context.Context, filename string) error
}
