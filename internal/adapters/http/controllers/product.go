package controllers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rafaelleal24/catalog/internal/adapters/http/handlers"
	"github.com/rafaelleal24/catalog/internal/core/domain"
	"github.com/rafaelleal24/catalog/internal/core/dto"
	"github.com/rafaelleal24/catalog/internal/core/service"
	"github.com/rafaelleal24/catalog/internal/core/serviceerrors"
	"github.com/rafaelleal24/catalog/internal/core/validation"
)

type ProductController struct {
	productService *service.ProductService
}

type ProductResponse struct {
	ID          string `json:"id" example:"665f1c2ab3e4d5f6a7b8c9d0"`
	Name        string `json:"name" example:"Widget"`
	Description string `json:"description" example:"A widget"`
	Price       int64  `json:"price" example:"9"`
	ImageURL    string `json:"imageUrl" example:"/uploads/widget_1700000000000.png"`
}

type CreatedResponse struct {
	ID string `json:"id" example:"665f1c2ab3e4d5f6a7b8c9d0"`
}

func NewProductResponse(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          string(product.ID),
		Name:        product.Name,
		Description: product.Description,
		Price:       int64(product.Price),
		ImageURL:    product.ImageURL,
	}
}

func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// CreateProduct godoc
// @Summary     Create a product
// @Description Creates a product from a multipart form with an image upload
// @Tags        products
// @Accept      multipart/form-data
// @Produce     json
// @Param       name        formData string true "Product name"
// @Param       description formData string true "Product description"
// @Param       price       formData int    true "Price, a non negative integer"
// @Param       image       formData file   true "Product image (png or jpeg, up to 500 KiB)"
// @Success     201 {object} handlers.Response{data=CreatedResponse}
// @Failure     400 {object} handlers.Response{data=[]serviceerrors.FieldError}
// @Failure     429 {object} handlers.ErrorResponse
// @Failure     500 {object} handlers.ErrorResponse
// @Router      /products [post]
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var request dto.CreateProductRequest
	if err := c.ShouldBind(&request); err != nil {
		_ = c.Error(serviceerrors.NewInvalidRequestError(err.Error()))
		return
	}

	fh, err := c.FormFile(validation.ImageField)
	switch {
	case err == nil:
		request.Image = newImageUpload(fh)
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		_ = c.Error(serviceerrors.NewInvalidRequestError(err.Error()))
		return
	}

	product, err := pc.productService.CreateProduct(c.Request.Context(), &request)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handlers.Response{
		Message: "success",
		Data:    CreatedResponse{ID: string(product.ID)},
	})
}

// GetAll godoc
// @Summary     List all products
// @Description Returns every product in storage order
// @Tags        products
// @Produce     json
// @Success     200 {object} handlers.Response{data=[]ProductResponse}
// @Failure     500 {object} handlers.ErrorResponse
// @Router      /products [get]
func (pc *ProductController) GetAll(c *gin.Context) {
	products, err := pc.productService.GetAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	response := make([]ProductResponse, len(products))
	for i, product := range products {
		response[i] = NewProductResponse(product)
	}

	c.JSON(http.StatusOK, handlers.Response{Message: "success", Data: response})
}

func newImageUpload(fh *multipart.FileHeader) *dto.ImageUpload {
	return &dto.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
