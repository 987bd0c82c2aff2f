package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"subtitle-credit/domain/apperror"
	"subtitle-credit/domain/dto"
	"subtitle-credit/interfaces/middleware"
	"subtitle-credit/usecase"
)

type IPaymentHandler interface {
	Initiate(c *gin.Context)
	List(c *gin.Context)
	GetStatus(c *gin.Context)
	Balance(c *gin.Context)
	Bundles(c *gin.Context)
}

type PaymentHandler struct {
	paymentUsecase usecase.IPaymentUsecase
}

func NewPaymentHandler(paymentUsecase usecase.IPaymentUsecase) IPaymentHandler {
	return &PaymentHandler{paymentUsecase: paymentUsecase}
}

// Initiate handles POST /api/payments
func (h *PaymentHandler) Initiate(c *gin.Context) {
	var req dto.ReqInitiatePayment
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, apperror.Validation("credits must be a positive integer"))
		return
	}

	res, err := h.paymentUsecase.Initiate(c.Request.Context(), middleware.Identity(c), req.Credits)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Payment initialized", res))
}

func (h *PaymentHandler) List(c *gin.Context) {
	payments, err := h.paymentUsecase.List(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Payments retrieved successfully", payments))
}

func (h *PaymentHandler) GetStatus(c *gin.Context) {
	payment, err := h.paymentUsecase.GetStatus(c.Request.Context(), middleware.Identity(c), c.Param("reference"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Payment retrieved successfully", payment))
}

// Balance handles GET /api/credits
func (h *PaymentHandler) Balance(c *gin.Context) {
	res, err := h.paymentUsecase.Balance(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Credit Retrieved Successfully", res))
}

// Bundles handles GET /api/credits/bundles; it needs no caller.
func (h *PaymentHandler) Bundles(c *gin.Context) {
	c.JSON(http.StatusOK, dto.OK("Success", h.paymentUsecase.Bundles()))
}
