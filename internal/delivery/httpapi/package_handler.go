package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mxvision/iothub-ota-service/internal/usecase"
	packagedto "github.com/mxvision/iothub-ota-service/internal/usecase/dto/pkg"
)

type PackageHandler struct {
	uc usecase.PackageUsecase
}

func NewPackageHandler(uc usecase.PackageUsecase) *PackageHandler {
	return &PackageHandler{uc: uc}
}

type createPackageRequest struct {
	Name        string `json:"name" binding:"required"`
	Version     string `json:"version" binding:"required"`
	Description string `json:"description"`
	Entry       string `json:"entry"`
	FilePath    string `json:"filePath" binding:"required"`
	ProcessPath string `json:"processPath"`
	Size        int64  `json:"size" binding:"required"`
	MD5         string `json:"md5" binding:"required"`
	ProductID   string `json:"productId" binding:"required"`
}

func (h *PackageHandler) CreatePackage(c *gin.Context) {
	var req createPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pkg, err := h.uc.CreatePackage(&packagedto.CreatePackageInput{
		Name:        req.Name,
		Version:     req.Version,
		Description: req.Description,
		Entry:       req.Entry,
		FilePath:    req.FilePath,
		ProcessPath: req.ProcessPath,
		Size:        req.Size,
		MD5:         req.MD5,
		ProductID:   req.ProductID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pkg)
}

func (h *PackageHandler) ListPackages(c *gin.Context) {
	packages, err := h.uc.ListPackages()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, packages)
}

func (h *PackageHandler) DeletePackage(c *gin.Context) {
	id := c.Param("id")
	if err := h.uc.DeletePackage(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "package deleted", "id": id})
}
