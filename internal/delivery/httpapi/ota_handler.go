package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mxvision/iothub-ota-service/internal/domain"
	"github.com/mxvision/iothub-ota-service/internal/usecase"
	otadto "github.com/mxvision/iothub-ota-service/internal/usecase/dto/ota"
)

type OTAHandler struct {
	uc usecase.OTAUsecase
}

func NewOTAHandler(uc usecase.OTAUsecase) *OTAHandler {
	return &OTAHandler{uc: uc}
}

type createTaskRequest struct {
	Name      string   `json:"name" binding:"required"`
	PackageID string   `json:"packageId" binding:"required"`
	DeviceIDs []string `json:"deviceIdList" binding:"required,min=1"`
}

func (h *OTAHandler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	output, err := h.uc.CreateTask(&otadto.CreateTaskInput{
		Name:      req.Name,
		PackageID: req.PackageID,
		DeviceIDs: req.DeviceIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, output)
}

func (h *OTAHandler) ListTasks(c *gin.Context) {
	outputs, err := h.uc.ListTasks()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outputs)
}

func (h *OTAHandler) GetTaskDevices(c *gin.Context) {
	outputs, err := h.uc.GetTaskDevices(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outputs)
}

type retryRequest struct {
	ID string `json:"id" binding:"required"`
}

func (h *OTAHandler) RetryDeviceOTA(c *gin.Context) {
	var req retryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.uc.RetryDeviceOTA(req.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "retry accepted", "id": req.ID})
}

func (h *OTAHandler) StopDeviceOTA(c *gin.Context) {
	id := c.Param("id")
	if err := h.uc.StopDeviceOTA(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "stop accepted", "id": id})
}

func (h *OTAHandler) StopTask(c *gin.Context) {
	id := c.Param("id")
	if err := h.uc.StopTask(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "stop accepted", "id": id})
}

// respondError maps domain errors onto HTTP statuses: admission conflicts are
// 409, lookups 404, everything else 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrDeviceBusy),
		errors.Is(err, domain.ErrPackageDeleted),
		errors.Is(err, domain.ErrPackageExists),
		errors.Is(err, domain.ErrAlreadyTerminal),
		errors.Is(err, domain.ErrStillActive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDeviceNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrPackageNotFound),
		errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrDeviceOTANotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
