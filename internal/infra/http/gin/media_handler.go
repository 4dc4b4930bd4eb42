package ginserver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"swapmeet/internal/infra/storage/s3"
)

const maxOfferImageSizeBytes = 10 * 1024 * 1024

// MediaHandler stores offer photos and hands back the public URL that a
// trade proposal then references.
type MediaHandler struct {
	Uploader s3.Uploader
}

func (h MediaHandler) UploadOfferImage(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media storage unavailable"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file is required: %v", err)})
		return
	}
	if fileHeader.Size <= 0 || fileHeader.Size > maxOfferImageSizeBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file must be 1 byte to %d MB", maxOfferImageSizeBytes/1024/1024)})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxOfferImageSizeBytes+1024))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot read file"})
		return
	}
	if int64(len(data)) > maxOfferImageSizeBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}

	contentType := http.DetectContentType(data)
	if err := checkImageType(contentType); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key := offerImageObjectKey(user.ID, fileHeader.Filename)
	url, err := h.Uploader.Upload(c.Request.Context(), key, bytes.NewReader(data), contentType)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"image_url": url})
}

func checkImageType(contentType string) error {
	switch contentType {
	case "image/jpeg", "image/png", "image/webp":
		return nil
	default:
		return errors.New("unsupported content type: " + contentType)
	}
}

func offerImageObjectKey(userID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	return "offers/" + userID + "/" + uuid.NewString() + ext
}

var _ MediaHTTP = MediaHandler{}
