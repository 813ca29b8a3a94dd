package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mxvision/iothub-ota-service/internal/usecase"
	devicedto "github.com/mxvision/iothub-ota-service/internal/usecase/dto/device"
)

type DeviceHandler struct {
	uc usecase.DeviceUsecase
}

func NewDeviceHandler(uc usecase.DeviceUsecase) *DeviceHandler {
	return &DeviceHandler{uc: uc}
}

type createDeviceRequest struct {
	Name      string `json:"name"`
	Code      string `json:"code" binding:"required"`
	DeviceID  string `json:"deviceId"`
	IPAddress string `json:"ipAddress"`
	ProductID string `json:"productId" binding:"required"`
}

func (h *DeviceHandler) CreateDevice(c *gin.Context) {
	var req createDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	output, err := h.uc.CreateDevice(&devicedto.CreateDeviceInput{
		Name:      req.Name,
		Code:      req.Code,
		DeviceID:  req.DeviceID,
		IPAddress: req.IPAddress,
		ProductID: req.ProductID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, output)
}

func (h *DeviceHandler) ListDevices(c *gin.Context) {
	outputs, err := h.uc.ListDevices()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outputs)
}

func (h *DeviceHandler) GetDevice(c *gin.Context) {
	device, err := h.uc.GetDeviceByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, device)
}
