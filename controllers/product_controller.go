package controllers

import (
	"errors"
	"net/http"

	"github.com/Majorzinnn/botDC/models"
	"github.com/Majorzinnn/botDC/repository"
	"github.com/Majorzinnn/botDC/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

// ProductController exposes catalog CRUD to the dashboard.
type ProductController struct {
	Catalog *services.CatalogService
	Logger  *zap.Logger
}

// GetProducts lists active products.
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	products, err := ctrl.Catalog.ListProducts(c.Request.Context())
	if err != nil {
		ctrl.Logger.Error("Failed to fetch products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao listar produtos"})
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, products)
}

// CreateProduct adds a catalog entry.
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req models.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	product, err := ctrl.Catalog.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		ctrl.Logger.Error("Failed to create product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar produto"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct soft-deletes a catalog entry.
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id := c.Param("product_id")

	if err := ctrl.Catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produto não encontrado"})
			return
		}
		ctrl.Logger.Error("Failed to delete product", zap.String("product_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao remover produto"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Produto removido"})
}
