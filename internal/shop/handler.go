package shop

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wardrobe-api/wardrobe-shop-service/internal/auth"
)

type catalogHandler struct {
	log     *logrus.Entry
	service CatalogService
}

func NewHandler(service CatalogService, log *logrus.Entry) *catalogHandler {
	return &catalogHandler{
		log:     log,
		service: service,
	}
}

func (h *catalogHandler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	shops := router.Group("/shops", authMiddleware)
	shops.POST("", h.createShop)
	shops.GET("", h.listShops)
	shops.GET("/:id", h.getShop)
	shops.PUT("/:id", h.updateShop)
	shops.DELETE("/:id", h.deleteShop)
	shops.PUT("/:id/attendants", h.assignAttendants)
	shops.GET("/:id/categories", h.categoryTree)

	categories := router.Group("/categories", authMiddleware)
	categories.POST("", h.createCategory)
	categories.GET("/:id", h.categoryWithChildren)
	categories.PUT("/:id", h.updateCategory)
	categories.DELETE("/:id", h.deleteCategory)

	products := router.Group("/products", authMiddleware)
	products.POST("", h.createProduct)
	products.GET("/:id", h.getProduct)
	products.PUT("/:id", h.updateProduct)
	products.DELETE("/:id", h.deleteProduct)
}

func (h *catalogHandler) createShop(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req ShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shop, err := h.service.CreateShop(actor, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shop)
}

func (h *catalogHandler) listShops(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	shops, err := h.service.ListShops(actor)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, shops)
}

func (h *catalogHandler) getShop(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	shop, err := h.service.GetShop(actor, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, shop)
}

func (h *catalogHandler) updateShop(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req ShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shop, err := h.service.UpdateShop(actor, id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, shop)
}

func (h *catalogHandler) deleteShop(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.service.DeleteShop(actor, id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *catalogHandler) assignAttendants(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Attendants []uint `json:"attendants" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shop, err := h.service.AssignAttendants(actor, id, req.Attendants)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, shop)
}

func (h *catalogHandler) categoryTree(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	tree, err := h.service.CategoryTree(actor, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (h *catalogHandler) createCategory(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.service.CreateCategory(actor, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *catalogHandler) categoryWithChildren(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	node, err := h.service.CategoryWithChildren(actor, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

func (h *catalogHandler) updateCategory(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.service.UpdateCategory(actor, id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *catalogHandler) deleteCategory(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.service.DeleteCategory(actor, id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *catalogHandler) createProduct(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.service.CreateProduct(actor, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *catalogHandler) getProduct(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	product, err := h.service.GetProduct(id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *catalogHandler) updateProduct(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.service.UpdateProduct(actor, id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *catalogHandler) deleteProduct(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.service.DeleteProduct(actor, id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func (h *catalogHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrShopNotFound),
		errors.Is(err, ErrCategoryNotFound),
		errors.Is(err, ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrNotShopAdmin):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrDuplicateCategory):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrCategoryCycle),
		errors.Is(err, ErrParentShopMismatch),
		errors.Is(err, ErrInvalidPrice),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrEmptyName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Errorf("unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
