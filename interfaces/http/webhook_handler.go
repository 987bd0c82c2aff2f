package http

import (
	"crypto/subtle"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"subtitle-credit/domain/apperror"
	"subtitle-credit/domain/dto"
	"subtitle-credit/interfaces/middleware"
	"subtitle-credit/usecase"
)

const (
	HeaderPaystackSignature = "x-paystack-signature"
	HeaderCallbackKey       = "X-Callback-Key"

	maxWebhookBody = 1 << 20
)

type IWebhookHandler interface {
	Paystack(c *gin.Context)
	JobCallback(c *gin.Context)
}

type WebhookHandler struct {
	paymentUsecase usecase.IPaymentUsecase
	videoUsecase   usecase.IVideoUsecase
	callbackKey    string
}

func NewWebhookHandler(paymentUsecase usecase.IPaymentUsecase, videoUsecase usecase.IVideoUsecase, callbackKey string) IWebhookHandler {
	return &WebhookHandler{
		paymentUsecase: paymentUsecase,
		videoUsecase:   videoUsecase,
		callbackKey:    callbackKey,
	}
}

// Paystack handles POST /webhook/paystack. The signature covers the raw bytes,
// so the body is read before any decoding.
func (h *WebhookHandler) Paystack(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		middleware.HandleError(c, apperror.Validation("unreadable body"))
		return
	}

	if err := h.paymentUsecase.Reconcile(c.Request.Context(), body, c.GetHeader(HeaderPaystackSignature)); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Webhook processed", nil))
}

// JobCallback handles POST /webhook/jobs/:jobId from the subtitle processor.
func (h *WebhookHandler) JobCallback(c *gin.Context) {
	key := c.GetHeader(HeaderCallbackKey)
	if h.callbackKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.callbackKey)) != 1 {
		middleware.HandleError(c, apperror.Unauthorized("invalid callback key"))
		return
	}

	var req dto.ReqJobCallback
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.videoUsecase.CompleteJob(c.Request.Context(), c.Param("jobId"), req); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Job updated", nil))
}
