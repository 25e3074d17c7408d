package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS 返回处理跨域请求头的中间件。浏览器端渲染器与本服务通常不同源。
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, o := range allowedOrigins {
			if o == "*" || o == origin {
				allowed = true
				break
			}
		}

		if allowed && origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type")
			// 只对显式配置的来源开放凭证，通配来源回显凭证会引入 CSRF
			for _, o := range allowedOrigins {
				if o != "*" && o == origin {
					c.Header("Access-Control-Allow-Credentials", "true")
					break
				}
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}
