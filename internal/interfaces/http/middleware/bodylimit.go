package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smberp/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects request bodies larger than maxBytes. A declared
// Content-Length above the limit is refused up front; chunked uploads
// without one are cut off by MaxBytesReader while the handler reads.
// A limit of zero or less disables the check.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse("REQUEST_TOO_LARGE", "Request body exceeds maximum allowed size"))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
