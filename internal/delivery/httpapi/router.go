package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/mxvision/iothub-ota-service/internal/usecase"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	deviceUsecase usecase.DeviceUsecase,
	packageUsecase usecase.PackageUsecase,
	otaUsecase usecase.OTAUsecase) *gin.Engine {

	router := gin.New()
	router.Use(gin.Recovery())

	deviceHandler := NewDeviceHandler(deviceUsecase)
	packageHandler := NewPackageHandler(packageUsecase)
	otaHandler := NewOTAHandler(otaUsecase)

	api := router.Group("/api")
	{
		devices := api.Group("/devices")
		devices.POST("", deviceHandler.CreateDevice)
		devices.GET("", deviceHandler.ListDevices)
		devices.GET("/:id", deviceHandler.GetDevice)

		packages := api.Group("/packages")
		packages.POST("", packageHandler.CreatePackage)
		packages.GET("", packageHandler.ListPackages)
		packages.DELETE("/:id", packageHandler.DeletePackage)

		tasks := api.Group("/otaTasks")
		tasks.POST("", otaHandler.CreateTask)
		tasks.GET("", otaHandler.ListTasks)
		tasks.GET("/:id/devices", otaHandler.GetTaskDevices)
		tasks.POST("/retry", otaHandler.RetryDeviceOTA)
		tasks.POST("/stop/:id", otaHandler.StopDeviceOTA)
		tasks.POST("/stopTask/:id", otaHandler.StopTask)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
