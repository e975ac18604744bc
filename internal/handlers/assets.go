package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/musewave/backend/internal/errors"
	"github.com/musewave/backend/internal/repository"
)

// GetAsset handles GET /v1/assets/:id. When the storage backend is local to
// this process, it hands the file to http.ServeContent for automatic
// conditional-GET and byte-range support; otherwise it parses the Range
// header itself and streams a single range (or the full object) from the
// backend's OpenRange.
func (h *Handlers) GetAsset(c *gin.Context) {
	id := c.Param("id")

	asset, err := h.Kernel().AssetRepo().GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrAssetNotFound) {
			writeAPIError(c, apperrors.NotFound("asset"))
			return
		}
		writeAPIError(c, err)
		return
	}

	store := h.Kernel().Storage()

	if localPath := store.ResolvePath(asset.Path); localPath != "" {
		f, err := os.Open(localPath)
		if err != nil {
			writeAPIError(c, apperrors.NotFound("asset"))
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			writeAPIError(c, apperrors.InternalError("stat asset: "+err.Error()))
			return
		}

		c.Header("Content-Type", asset.Mime)
		http.ServeContent(c.Writer, c.Request, asset.ID, info.ModTime(), f)
		return
	}

	ctx := c.Request.Context()
	info, err := store.Stat(ctx, asset.Path)
	if err != nil {
		writeAPIError(c, apperrors.NotFound("asset"))
		return
	}

	c.Header("Accept-Ranges", "bytes")
	c.Header("Content-Type", asset.Mime)

	rangeHeader := c.GetHeader("Range")
	if rangeHeader == "" {
		rc, err := store.Open(ctx, asset.Path)
		if err != nil {
			writeAPIError(c, apperrors.InternalError("open asset: "+err.Error()))
			return
		}
		defer rc.Close()
		c.Header("Content-Length", strconv.FormatInt(info.Size, 10))
		c.Status(http.StatusOK)
		_, _ = io.Copy(c.Writer, rc)
		return
	}

	start, end, err := parseRange(rangeHeader, info.Size)
	if err != nil {
		c.Header("Content-Range", fmt.Sprintf("bytes */%d", info.Size))
		c.Status(http.StatusRequestedRangeNotSatisfiable)
		return
	}

	rc, err := store.OpenRange(ctx, asset.Path, start, end+1)
	if err != nil {
		writeAPIError(c, apperrors.InternalError("open asset range: "+err.Error()))
		return
	}
	defer rc.Close()

	c.Header("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, info.Size))
	c.Header("Content-Length", strconv.FormatInt(end-start+1, 10))
	c.Status(http.StatusPartialContent)
	_, _ = io.Copy(c.Writer, rc)
}

// parseRange parses a single-range "bytes=start-end" Range header, rejecting
// multi-range requests and out-of-bounds offsets.
func parseRange(header string, size int64) (start, end int64, err error) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return 0, 0, fmt.Errorf("invalid range")
	}
	spec := strings.TrimPrefix(header, prefix)
	if strings.Contains(spec, ",") {
		return 0, 0, fmt.Errorf("multi-range not supported")
	}

	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid range")
	}

	startStr, endStr := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])

	if startStr == "" {
		if endStr == "" {
			return 0, 0, fmt.Errorf("invalid range")
		}
		suffix, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || suffix <= 0 {
			return 0, 0, fmt.Errorf("invalid range")
		}
		if suffix > size {
			suffix = size
		}
		return size - suffix, size - 1, nil
	}

	s, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || s < 0 || s >= size {
		return 0, 0, fmt.Errorf("invalid range")
	}
	if endStr == "" {
		return s, size - 1, nil
	}
	e, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil || e < s {
		return 0, 0, fmt.Errorf("invalid range")
	}
	if e >= size {
		e = size - 1
	}
	return s, e, nil
}
