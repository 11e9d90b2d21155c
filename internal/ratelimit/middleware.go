package ratelimit

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"anveshan/internal/dto"
	"anveshan/internal/metrics"
)

// Middleware rejects clients over the limit with 429. Limiter errors let the
// request through.
func Middleware(l Limiter, log *zerolog.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if !allowed {
			m.IncRegistration(metrics.OutcomeLimited)
			dto.TooManyRequestsError(c)
			return
		}
		c.Next()
	}
}
