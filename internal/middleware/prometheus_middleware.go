package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unmatchedPath подставляется вместо пути запроса, не попавшего ни в один маршрут
const unmatchedPath = "<unmatched>"

// PrometheusMiddleware собирает HTTP-метрики API статуса.
//
// Метрики (с префиксом service):
// * http_request_duration_seconds{method,path,status}: histogram
// * http_response_size_bytes{path}: histogram
// * http_requests_inflight: gauge
// * http_request_errors_total{method,path,status}: counter (4xx/5xx)
//
// Метка path содержит шаблон маршрута gin (/api/world/chunks/:x/:y/:z), поэтому
// число серий не растёт с числом запрошенных чанков. Сам /metrics не учитывается.
type PrometheusMiddleware struct {
	registerer  prometheus.Registerer
	gatherer    prometheus.Gatherer
	collectors  []prometheus.Collector
	reqDuration *prometheus.HistogramVec
	respSize    *prometheus.HistogramVec
	reqInflight prometheus.Gauge
	reqErrors   *prometheus.CounterVec
}

// NewPrometheusMiddleware регистрирует метрики в reg. gatherer отдаётся на /metrics.
// При конфликте имён уже зарегистрированные метрики снимаются и возвращается ошибка.
func NewPrometheusMiddleware(service string, reg prometheus.Registerer, gatherer prometheus.Gatherer) (*PrometheusMiddleware, error) {
	pm := &PrometheusMiddleware{
		registerer: reg,
		gatherer:   gatherer,
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: service,
			Name:      "http_request_duration_seconds",
			Help:      "Длительность HTTP-запросов.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "path", "status"}),
		respSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: service,
			Name:      "http_response_size_bytes",
			Help:      "Размер тела HTTP-ответа.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 7),
		}, []string{"path"}),
		reqInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: service,
			Name:      "http_requests_inflight",
			Help:      "Текущее количество обрабатываемых HTTP-запросов.",
		}),
		reqErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: service,
			Name:      "http_request_errors_total",
			Help:      "Общее число запросов, завершившихся ошибкой (4xx/5xx).",
		}, []string{"method", "path", "status"}),
	}

	for _, c := range []prometheus.Collector{pm.reqDuration, pm.respSize, pm.reqInflight, pm.reqErrors} {
		if err := reg.Register(c); err != nil {
			pm.Unregister()
			return nil, err
		}
		pm.collectors = append(pm.collectors, c)
	}
	return pm, nil
}

// Unregister снимает метрики, зарегистрированные этим экземпляром
func (pm *PrometheusMiddleware) Unregister() {
	for _, c := range pm.collectors {
		pm.registerer.Unregister(c)
	}
	pm.collectors = nil
}

// Handler возвращает gin.HandlerFunc для router.Use()
func (pm *PrometheusMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "/metrics" {
			c.Next()
			return
		}
		if path == "" {
			path = unmatchedPath
		}

		start := time.Now()
		pm.reqInflight.Inc()
		c.Next()
		pm.reqInflight.Dec()

		code := c.Writer.Status()
		status := strconv.Itoa(code)
		method := c.Request.Method

		pm.reqDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size > 0 {
			pm.respSize.WithLabelValues(path).Observe(float64(size))
		}
		if code >= 400 {
			pm.reqErrors.WithLabelValues(method, path, status).Inc()
		}
	}
}

// RegisterMetricsEndpoint добавляет GET /metrics в указанный router
func (pm *PrometheusMiddleware) RegisterMetricsEndpoint(r gin.IRoutes) {
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(pm.gatherer, promhttp.HandlerOpts{})))
}
