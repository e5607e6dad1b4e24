package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "habitspark"

// Recorder 汇总 HTTP 与打卡相关的 Prometheus 指标；nil Recorder 的所有方法都是空操作
type Recorder struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	completions     *prometheus.CounterVec
	uncompletions   prometheus.Counter
	decayEvents     prometheus.Counter
	decayXP         prometheus.Counter
}

// New 创建独立的 registry 并注册全部指标
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of API requests by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "habit_completions_total",
			Help:      "Completion requests by outcome.",
		}, []string{"outcome"}),
		uncompletions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "habit_uncompletions_total",
			Help:      "Completions removed for today.",
		}),
		decayEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "xp_decay_events_total",
			Help:      "Daily inactivity penalties applied.",
		}),
		decayXP: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "xp_decayed_total",
			Help:      "Experience removed by inactivity penalties.",
		}),
	}

	r.registry.MustRegister(
		r.requestDuration,
		r.completions,
		r.uncompletions,
		r.decayEvents,
		r.decayXP,
		collectors.NewGoCollector(),
	)
	return r
}

// Middleware 记录每个请求的耗时，路由使用注册模板而不是原始路径
func (r *Recorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.requestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler 暴露 /metrics
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) ObserveCompletion(outcome string) {
	if r == nil {
		return
	}
	r.completions.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ObserveUncompletion() {
	if r == nil {
		return
	}
	r.uncompletions.Inc()
}

func (r *Recorder) ObserveDecay(amount int) {
	if r == nil || amount <= 0 {
		return
	}
	r.decayEvents.Inc()
	r.decayXP.Add(float64(amount))
}
