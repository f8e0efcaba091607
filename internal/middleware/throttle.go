package middleware

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"authpanel/internal/ratelimit"
)

// Throttle guards an endpoint family with a counter store keyed by client
// address. 429 responses carry Retry-After.
func Throttle(store ratelimit.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retryAfter, err := store.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			// counter backend down: let the request through rather than
			// failing the whole endpoint
			log.Printf("[throttle] counter store error for %s: %v", c.ClientIP(), err)
			c.Next()
			return
		}
		if !ok {
			seconds := int(retryAfter / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
