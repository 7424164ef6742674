package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/voxel-engine/internal/logging"
)

// Ключ trace-ID в gin.Context и заголовок ответа
const (
	TraceIDKey    = "trace_id"
	TraceIDHeader = "X-Trace-Id"
)

// RequestLogger присваивает запросу trace-ID и пишет одну строку лога на ответ.
// Ошибочные ответы пишутся в ERROR (5xx) или WARN (4xx), пробы /health и /metrics в DEBUG.
type RequestLogger struct {
	logger *logging.Logger
}

// NewRequestLogger создаёт middleware. При logger == nil используется логгер компонента server.
func NewRequestLogger(logger *logging.Logger) *RequestLogger {
	if logger == nil {
		logger = logging.GetServerLogger()
	}
	return &RequestLogger{logger: logger}
}

// Handler возвращает gin.HandlerFunc для router.Use()
func (rl *RequestLogger) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := requestTraceID(c)
		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		status := c.Writer.Status()
		latency := time.Since(start)

		switch {
		case status >= http.StatusInternalServerError:
			rl.logger.Error("[HTTP] %s %s %d %s errors=%q trace=%s",
				c.Request.Method, path, status, latency, c.Errors.String(), traceID)
		case status >= http.StatusBadRequest:
			rl.logger.Warn("[HTTP] %s %s %d %s ip=%s trace=%s",
				c.Request.Method, path, status, latency, c.ClientIP(), traceID)
		case path == "/health" || path == "/metrics":
			rl.logger.Debug("[HTTP] %s %s %d %s", c.Request.Method, path, status, latency)
		default:
			rl.logger.Info("[HTTP] %s %s %d %s %dB trace=%s",
				c.Request.Method, path, status, latency, c.Writer.Size(), traceID)
		}
	}
}

// requestTraceID берёт trace-ID из спана otelgin, иначе генерирует UUID
func requestTraceID(c *gin.Context) string {
	if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.IsValid() {
		return sc.TraceID().String()
	}
	return uuid.NewString()
}
