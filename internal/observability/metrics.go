package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
)

// Metrics is the service's Prometheus surface. A nil *Metrics is valid and
// records nothing, so callers never check whether metrics are enabled.
type Metrics struct {
	apiRequests     *CounterVec
	apiLatency      *HistogramVec
	apiInflight     *Gauge
	ticketMutations *CounterVec
	sseClients      *Gauge
	dbPool          *GaugeVec
	redisUp         *Gauge
	redisPing       *Gauge
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("tickethub_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"tickethub_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight:     NewGauge("tickethub_api_inflight_requests", "In-flight API requests."),
		ticketMutations: NewCounterVec("tickethub_ticket_mutations_total", "Ticket writes by kind.", []string{"kind"}),
		sseClients:      NewGauge("tickethub_sse_clients", "Connected SSE clients."),
		dbPool:          NewGaugeVec("tickethub_db_pool", "database/sql pool statistics.", []string{"stat"}),
		redisUp:         NewGauge("tickethub_redis_up", "1 when the realtime redis answers ping."),
		redisPing:       NewGauge("tickethub_redis_ping_seconds", "Latency of the last redis ping."),
	}
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, strconv.Itoa(status))
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflight(delta float64) {
	if m == nil {
		return
	}
	m.apiInflight.Add(delta)
}

// IncTicketMutation counts created/updated/deleted tickets.
func (m *Metrics) IncTicketMutation(kind string) {
	if m == nil {
		return
	}
	m.ticketMutations.Inc(kind)
}

func (m *Metrics) SSEClients(delta float64) {
	if m == nil {
		return
	}
	m.sseClients.Add(delta)
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.ticketMutations,
		m.sseClients,
		m.dbPool,
		m.redisUp,
		m.redisPing,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

// StartDBCollector samples the connection pool until ctx is done.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbPool.Set(float64(stats.OpenConnections), "open_connections")
				m.dbPool.Set(float64(stats.InUse), "in_use")
				m.dbPool.Set(float64(stats.Idle), "idle")
				m.dbPool.Set(float64(stats.WaitCount), "wait_count")
				m.dbPool.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.dbPool.Set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

// StartRedisCollector pings the realtime redis until ctx is done. The
// client is owned by the caller.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
