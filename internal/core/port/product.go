package port

import (
	"context"

	"github.com/rafaelleal24/catalog/internal/core/domain"
)

//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock

type ProductPort interface {
	Create(ctx context.Context, product *domain.Product) error
	GetAll(ctx context.Context) ([]*domain.Product, error)
}
