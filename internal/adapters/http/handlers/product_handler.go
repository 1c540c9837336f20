package handlers

import (
	"stockdesk/internal/core/services"
	"stockdesk/internal/pkg/pagination"
	"stockdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles the product catalog
type ProductHandler struct {
	catalog *services.CatalogService
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalog *services.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// AddProductRequest represents add product request body.
// Pointers tell a missing field apart from zero.
type AddProductRequest struct {
	Name     string   `json:"name" form:"name"`
	Quantity *int     `json:"quantity" form:"quantity"`
	Price    *float64 `json:"price" form:"price"`
}

// ListProducts lists products newest first
// @Summary List products
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /products [get]
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	params := pagination.FromQuery(c)

	products, total, err := h.catalog.ListProducts(c.UserContext(), params.Offset, params.Limit)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "", pagination.NewPage(products, params, total))
}

// AddProduct adds a product
// @Summary Add product
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AddProductRequest true "Product data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /products [post]
func (h *ProductHandler) AddProduct(c *fiber.Ctx) error {
	var req AddProductRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Name == "" || req.Quantity == nil || req.Price == nil {
		return response.BadRequest(c, "All fields are required")
	}

	product, err := h.catalog.AddProduct(c.UserContext(), services.AddProductInput{
		Name:     req.Name,
		Quantity: *req.Quantity,
		Price:    *req.Price,
	})
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "Product added", product)
}
