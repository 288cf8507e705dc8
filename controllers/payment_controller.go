package controllers

import (
	"net/http"

	"github.com/Majorzinnn/botDC/models"
	"github.com/Majorzinnn/botDC/repository"
	"github.com/Majorzinnn/botDC/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentController exposes the checkout and reconciliation engine to the
// dashboard.
type PaymentController struct {
	Checkout     *services.CheckoutService
	Reconciler   *services.ReconcilerService
	Transactions repository.TransactionRepository
	Logger       *zap.Logger
}

// CreateCheckout starts a checkout session for a product purchase and
// returns the provider redirect URL.
func (pc *PaymentController) CreateCheckout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": services.CodeInvalidRequest})
		return
	}

	resp, svcErr := pc.Checkout.InitiateCheckout(c.Request.Context(), &req)
	if svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetStatus reconciles a session against the provider and returns the
// snapshot. With ?wait=true it runs the bounded poll loop instead of a
// single pass; exhaustion comes back 200 with timed_out=true and the
// transaction left pending, never as an error.
func (pc *PaymentController) GetStatus(c *gin.Context) {
	sessionID := c.Param("session_id")

	var (
		snap   *models.StatusSnapshot
		svcErr *services.ServiceError
	)
	if c.Query("wait") == "true" {
		snap, svcErr = pc.Reconciler.Poll(c.Request.Context(), sessionID)
	} else {
		snap, svcErr = pc.Reconciler.GetStatus(c.Request.Context(), sessionID)
	}
	if svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// ListTransactions returns the payment ledger, most recent first.
func (pc *PaymentController) ListTransactions(c *gin.Context) {
	txns, err := pc.Transactions.FindAll(c.Request.Context(), 100)
	if err != nil {
		pc.Logger.Error("Failed to list transactions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao listar transações"})
		return
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	c.JSON(http.StatusOK, txns)
}

func respondServiceError(c *gin.Context, svcErr *services.ServiceError) {
	c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message, "code": svcErr.Code})
}
