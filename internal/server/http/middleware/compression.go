package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/server/http/dto"
)

// maxDecompressedBody caps the inflated size of a gzip request body.
const maxDecompressedBody = 1 << 20

// DecompressRequest inflates gzip request bodies. Payment gateways and the
// storefront send plain JSON, so this only matters for proxies that compress
// uploads.
func DecompressRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		encoding := strings.ToLower(c.GetHeader("Content-Encoding"))
		if !strings.Contains(encoding, "gzip") {
			c.Next()
			return
		}

		body := c.Request.Body
		zr, err := gzip.NewReader(body)
		if err != nil {
			_ = body.Close()
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: dto.ErrorBody{Message: "malformed gzip body"}})
			return
		}
		defer func() {
			_ = zr.Close()
			_ = body.Close()
		}()

		c.Request.Body = http.MaxBytesReader(c.Writer, io.NopCloser(zr), maxDecompressedBody)
		c.Request.Header.Del("Content-Encoding")
		c.Request.ContentLength = -1
		c.Next()
	}
}
