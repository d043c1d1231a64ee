package domain

import "time"

const (
	ProductEntityName       = "product"
	ProductCreatedEventName = "product.created"
)

type Product struct {
	ID          ID
	Name        string
	Description string
	Price       Amount
	ImageURL    string
	CreatedAt   time.Time
}

func NewProduct(name string, description string, price Amount, imageURL string) *Product {
	return &Product{
		Name:        name,
		Description: description,
		Price:       price,
		ImageURL:    imageURL,
		CreatedAt:   time.Now(),
	}
}

type ProductCreatedEvent struct {
	ProductID   ID        `json:"product_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       Amount    `json:"price"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func (e *ProductCreatedEvent) GetName() string {
	return ProductCreatedEventName
}

func (e *ProductCreatedEvent) GetEntityName() string {
	return ProductEntityName
}

func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		ProductID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
	}
}
