package service

import (
	"context"

	"github.com/rafaelleal24/catalog/internal/core/domain"
	"github.com/rafaelleal24/catalog/internal/core/dto"
	"github.com/rafaelleal24/catalog/internal/core/logger"
	"github.com/rafaelleal24/catalog/internal/core/port"
	"github.com/rafaelleal24/catalog/internal/core/serviceerrors"
	"github.com/rafaelleal24/catalog/internal/core/validation"
)

type ProductService struct {
	productRepository port.ProductPort
	imageStore        port.ImageStore
	validator         *validation.Validator
}

func NewProductService(productRepository port.ProductPort, imageStore port.ImageStore, validator *validation.Validator) *ProductService {
	return &ProductService{
		productRepository: productRepository,
		imageStore:        imageStore,
		validator:         validator,
	}
}

// CreateProduct stores the uploaded image, validates the submission and
// persists the product. The staged image is discarded on any later failure,
// so a product never references a missing file and no file outlives a
// rejected request.
func (s *ProductService) CreateProduct(ctx context.Context, request *dto.CreateProductRequest) (*domain.Product, error) {
	if request == nil {
		return nil, serviceerrors.NewInvalidRequestError("empty request")
	}

	staged, err := s.stage(ctx, request.Image)
	if err != nil {
		return nil, err
	}

	product, err := s.commit(ctx, request, staged)
	if err != nil {
		s.compensate(ctx, staged)
		return nil, err
	}

	logger.Info(ctx, "Product created", map[string]any{
		"product_id": product.ID,
		"image_url":  product.ImageURL,
	})
	return product, nil
}

func (s *ProductService) GetAll(ctx context.Context) ([]*domain.Product, error) {
	return s.productRepository.GetAll(ctx)
}

func (s *ProductService) stage(ctx context.Context, upload *dto.ImageUpload) (*port.StagedImage, error) {
	if upload == nil {
		return nil, nil
	}

	staged, err := s.imageStore.Stage(ctx, upload)
	if err != nil {
		logger.Error(ctx, "product: stage image failed", err, map[string]any{
			"filename": upload.Filename,
			"size":     upload.Size,
		})
		return nil, serviceerrors.NewInternalError("failed to store image", err)
	}

	logger.Debug(ctx, "product: image staged", map[string]any{
		"filename":      staged.Filename,
		"declared_type": upload.ContentType,
		"detected_type": staged.DetectedType,
	})
	return staged, nil
}

func (s *ProductService) commit(ctx context.Context, request *dto.CreateProductRequest, staged *port.StagedImage) (*domain.Product, error) {
	if err := s.validator.Validate(request); err != nil {
		return nil, err
	}

	price, err := validation.ParsePrice(request.Price)
	if err != nil {
		return nil, serviceerrors.NewInvalidRequestError(err.Error())
	}

	product := domain.NewProduct(request.Name, request.Description, domain.NewAmount(price), staged.PublicURL)
	if err := s.productRepository.Create(ctx, product); err != nil {
		logger.Error(ctx, "product: create failed", err, map[string]any{
			"name":      request.Name,
			"price":     price,
			"image_url": staged.PublicURL,
		})
		return nil, err
	}

	return product, nil
}

func (s *ProductService) compensate(ctx context.Context, staged *port.StagedImage) {
	if staged == nil {
		return
	}

	if err := s.imageStore.Discard(ctx, staged.Filename); err != nil {
		logger.Error(ctx, "product: discard staged image failed", err, map[string]any{
			"filename": staged.Filename,
		})
		return
	}

	logger.Debug(ctx, "product: staged image discarded", map[string]any{"filename": staged.Filename})
}
