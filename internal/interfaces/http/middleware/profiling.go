package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// Profiling labels CPU samples taken while a request runs with its route and
// method, so time spent waiting on stock or balance locks can be traced back
// to the endpoint that caused it. Without a running profiler the labels are inert.
func Profiling() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}
		pyroscope.TagWrapper(c.Request.Context(), pyroscope.Labels("route", route, "method", c.Request.Method), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
