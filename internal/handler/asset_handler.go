package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/noah-isme/center-cms-api/internal/middleware"
	appErrors "github.com/noah-isme/center-cms-api/pkg/errors"
	"github.com/noah-isme/center-cms-api/pkg/response"
)

// MaxAssetSize caps a single upload.
const MaxAssetSize = 10 << 20

type assetUploader interface {
	Save(ctx context.Context, assetID string, data []byte) (string, error)
}

// AssetUploadResponse is returned after a successful upload. Both values
// go into a content payload's asset_id and asset_url.
type AssetUploadResponse struct {
	AssetID  string `json:"asset_id"`
	AssetURL string `json:"asset_url"`
}

// AssetHandler accepts uploads for the asset host.
type AssetHandler struct {
	host assetUploader
}

// NewAssetHandler constructs an AssetHandler.
func NewAssetHandler(host assetUploader) *AssetHandler {
	return &AssetHandler{host: host}
}

// Upload godoc
// @Summary Upload an asset
// @Description Stores a file under the caller's center and returns the id to reference from content
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Asset file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security ApiKeyAuth
// @Security AccessToken
// @Router /admin/assets [post]
func (h *AssetHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxAssetSize+(1<<20))
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	if header.Size > MaxAssetSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file exceeds the upload limit"))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxAssetSize+1))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read file"))
		return
	}
	if len(data) > MaxAssetSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file exceeds the upload limit"))
		return
	}

	assetID := assetIDFor(middleware.CenterFrom(c), header.Filename)
	url, err := h.host.Save(c.Request.Context(), assetID, data)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store asset"))
		return
	}

	response.Created(c, AssetUploadResponse{AssetID: assetID, AssetURL: url})
}

// assetIDFor namespaces uploads by center and keeps only the original
// extension of the client's filename.
func assetIDFor(centerID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	prefix := "shared"
	if centerID != "" {
		prefix = centerID
	}
	return prefix + "/" + uuid.NewString() + ext
}
