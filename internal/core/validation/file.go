package validation

import (
	"slices"

	"github.com/rafaelleal24/catalog/internal/core/dto"
	"github.com/rafaelleal24/catalog/internal/core/serviceerrors"
)

const (
	ImageField   = "image"
	bodyLocation = "body"

	MsgFileRequired    = "file is required"
	MsgInvalidFileType = "invalid file type"
	MsgInvalidFileSize = "invalid file size"
)

// Rule checks one property of an uploaded file and returns nil when it holds.
type Rule func(file *dto.ImageUpload) *serviceerrors.FieldError

func imageError(msg string) *serviceerrors.FieldError {
	return &serviceerrors.FieldError{Field: ImageField, Msg: msg, Location: bodyLocation}
}

func FileRequired(file *dto.ImageUpload) *serviceerrors.FieldError {
	if file == nil {
		return imageError(MsgFileRequired)
	}
	return nil
}

// FileTypes accepts files whose declared content type is one of allowed.
func FileTypes(allowed ...string) Rule {
	return func(file *dto.ImageUpload) *serviceerrors.FieldError {
		if file == nil || !slices.Contains(allowed, file.ContentType) {
			return imageError(MsgInvalidFileType)
		}
		return nil
	}
}

// FileSize accepts files of at most maxBytes.
func FileSize(maxBytes int64) Rule {
	return func(file *dto.ImageUpload) *serviceerrors.FieldError {
		if file == nil || file.Size > maxBytes {
			return imageError(MsgInvalidFileSize)
		}
		return nil
	}
}
