package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"subtitle-credit/domain/apperror"
	"subtitle-credit/domain/dto"
	"subtitle-credit/interfaces/middleware"
	"subtitle-credit/usecase"
)

type IVideoHandler interface {
	Estimate(c *gin.Context)
	Accept(c *gin.Context)
	ListJobs(c *gin.Context)
	GetJob(c *gin.Context)
}

type VideoHandler struct {
	videoUsecase usecase.IVideoUsecase
}

func NewVideoHandler(videoUsecase usecase.IVideoUsecase) IVideoHandler {
	return &VideoHandler{videoUsecase: videoUsecase}
}

// Estimate handles POST /api/videos/estimate
func (h *VideoHandler) Estimate(c *gin.Context) {
	var req dto.ReqEstimate
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, apperror.Validation(err.Error()))
		return
	}

	res, err := h.videoUsecase.Estimate(c.Request.Context(), middleware.Identity(c), req)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Estimate gotten successfully", res))
}

// Accept handles POST /api/videos/accept
func (h *VideoHandler) Accept(c *gin.Context) {
	var req dto.ReqAccept
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, apperror.Validation("token is required"))
		return
	}

	res, err := h.videoUsecase.Accept(c.Request.Context(), middleware.Identity(c), req.Token)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(res.Message, res))
}

// ListJobs handles GET /api/videos/jobs?status=
func (h *VideoHandler) ListJobs(c *gin.Context) {
	jobs, err := h.videoUsecase.ListJobs(c.Request.Context(), middleware.Identity(c), c.Query("status"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Jobs retrieved successfully", jobs))
}

// GetJob handles GET /api/videos/jobs/:jobId
func (h *VideoHandler) GetJob(c *gin.Context) {
	job, err := h.videoUsecase.GetJob(c.Request.Context(), middleware.Identity(c), c.Param("jobId"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Job retrieved successfully", job))
}
