package refund

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wardrobe-api/wardrobe-shop-service/internal/auth"
	"github.com/wardrobe-api/wardrobe-shop-service/internal/ledger"
	"github.com/wardrobe-api/wardrobe-shop-service/internal/shop"
)

type refundHandler struct {
	log     *logrus.Entry
	service RefundService
}

func NewHandler(service RefundService, log *logrus.Entry) *refundHandler {
	return &refundHandler{
		log:     log,
		service: service,
	}
}

func (h *refundHandler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	refunds := router.Group("/refunds", authMiddleware)
	refunds.POST("", h.applyRefund)
	refunds.GET("", h.listRefunds)

	approvals := router.Group("/approval-requests", authMiddleware)
	approvals.POST("", h.createRequest)
	approvals.GET("", h.listRequests)
	approvals.POST("/:id/approve", h.approve)
	approvals.POST("/:id/reject", h.reject)
}

func (h *refundHandler) applyRefund(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	refund, err := h.service.ApplyRefund(actor, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, refund)
}

func (h *refundHandler) listRefunds(c *gin.Context) {
	shopID, err := strconv.ParseUint(c.Query("shop"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shop query parameter required"})
		return
	}

	refunds, err := h.service.ListRefunds(uint(shopID))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, refunds)
}

func (h *refundHandler) createRequest(c *gin.Context) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req ApprovalRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.service.CreateApprovalRequest(actor, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

func (h *refundHandler) listRequests(c *gin.Context) {
	requests, err := h.service.ListApprovalRequests(c.Query("status"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *refundHandler) approve(c *gin.Context) {
	h.decide(c, h.service.Approve)
}

func (h *refundHandler) reject(c *gin.Context) {
	h.decide(c, h.service.Reject)
}

func (h *refundHandler) decide(c *gin.Context, fn func(auth.Actor, uint) (*ApprovalRequest, error)) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	request, err := fn(actor, uint(id))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *refundHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrRefundNotApproved), errors.Is(err, ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrRefundAlreadyApplied), errors.Is(err, ErrAlreadyDecided):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrExcessiveRefund):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, ErrRequestNotFound),
		errors.Is(err, ErrRefundNotFound),
		errors.Is(err, shop.ErrShopNotFound),
		errors.Is(err, shop.ErrProductNotFound),
		errors.Is(err, ledger.ErrSaleNotFound),
		errors.Is(err, ledger.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidTarget),
		errors.Is(err, ErrTargetShopMismatch),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrMissingCandidate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Errorf("unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
