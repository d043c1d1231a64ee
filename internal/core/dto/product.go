package dto

import "io"

// CreateProductRequest is the decoded create-product form. Price stays raw
// text so validation can report malformed input instead of failing to bind.
type CreateProductRequest struct {
	Name        string       `form:"name" validate:"required"`
	Description string       `form:"description" validate:"required"`
	Price       string       `form:"price" validate:"nonnegative_int"`
	Image       *ImageUpload `form:"-" validate:"-"`
}

// ImageUpload describes an uploaded file part. A nil *ImageUpload means the
// request carried no file.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}
