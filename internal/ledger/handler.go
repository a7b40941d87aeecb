package ledger

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wardrobe-api/wardrobe-shop-service/internal/auth"
	"github.com/wardrobe-api/wardrobe-shop-service/internal/shop"
)

type ledgerHandler struct {
	log     *logrus.Entry
	service LedgerService
}

func NewHandler(service LedgerService, log *logrus.Entry) *ledgerHandler {
	return &ledgerHandler{
		log:     log,
		service: service,
	}
}

func (h *ledgerHandler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	sales := router.Group("/sales", authMiddleware)
	sales.POST("", h.createSale)
	sales.GET("", h.listSales)
	sales.GET("/:id", h.getSale)

	orders := router.Group("/orders", authMiddleware)
	orders.POST("", h.createOrder)
	orders.GET("", h.listOrders)
	orders.GET("/:id", h.getOrder)
	orders.PATCH("/:id/status", h.advanceOrderStatus)

	router.GET("/shops/:id/summary", authMiddleware, h.shopSummary)
}

func (h *ledgerHandler) createSale(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sale, err := h.service.CreateSale(actor, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func (h *ledgerHandler) listSales(c *gin.Context) {
	shopID, err := queryShopID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shop query parameter required"})
		return
	}

	sales, err := h.service.ListSales(shopID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

func (h *ledgerHandler) getSale(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	sale, err := h.service.GetSale(id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func (h *ledgerHandler) createOrder(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.service.CreateOrder(actor, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *ledgerHandler) listOrders(c *gin.Context) {
	shopID, err := queryShopID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shop query parameter required"})
		return
	}

	orders, err := h.service.ListOrders(shopID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *ledgerHandler) getOrder(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	order, err := h.service.GetOrder(id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *ledgerHandler) advanceOrderStatus(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.service.AdvanceOrderStatus(actor, id, req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *ledgerHandler) shopSummary(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	summary, err := h.service.ShopSummary(id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func queryShopID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Query("shop"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func (h *ledgerHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrSaleNotFound),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, shop.ErrShopNotFound),
		errors.Is(err, shop.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrWrongShop):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNoItems),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidPhone),
		errors.Is(err, ErrInvalidStatusMove),
		errors.Is(err, ErrCancelledViaRefund):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Errorf("unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
