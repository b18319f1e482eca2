package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	schemaResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filetable_schema_resolutions_total",
			Help: "Total number of schema resolutions by format and outcome",
		},
		[]string{"format", "outcome"},
	)

	schemaResolutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filetable_schema_resolution_duration_seconds",
			Help:    "Schema resolution duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)

	discoveredFiles = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filetable_discovered_files",
			Help:    "Number of data files discovered per resolved table",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
		},
		[]string{"format"},
	)
)

// ResolutionMetricsCollector aggregates schema resolution metrics per format
// and gateway-wide. Prometheus counters are updated alongside the in-memory
// aggregates so both the /metrics scrape and the admin API see the same
// events.
type ResolutionMetricsCollector struct {
	metrics      map[string]*FormatMetrics
	metricsMutex sync.RWMutex

	globalMetrics *GlobalMetrics
	globalMutex   sync.RWMutex

	retentionDuration time.Duration
	cleanupInterval   time.Duration
}

// FormatMetrics holds resolution metrics for a single format
type FormatMetrics struct {
	Format                string
	TotalResolutions      int64
	SuccessfulResolutions int64
	FailedResolutions     int64
	TotalDurationNs       int64
	MinDurationNs         int64
	MaxDurationNs         int64
	AvgDurationNs         int64
	TotalFilesDiscovered  int64
	LastResolutionTime    time.Time
	LastError             string
	LastErrorTime         time.Time
	ResolutionsByHour     map[int64]int64 // Hour -> count
}

// GlobalMetrics holds gateway-wide resolution metrics
type GlobalMetrics struct {
	TotalResolutions      int64
	SuccessfulResolutions int64
	FailedResolutions     int64
	TotalDurationNs       int64
	ResolutionsByFormat   map[string]int64
	ResolutionsByTable    map[string]int64
	ResolutionsByHour     map[int64]int64
	StartTime             time.Time
}

// ResolutionMetrics represents a single schema resolution event
type ResolutionMetrics struct {
	TableID   string
	Format    string
	Success   bool
	Duration  time.Duration
	FileCount int
	Error     string
	Timestamp time.Time
}

// NewResolutionMetricsCollector creates a new metrics collector
func NewResolutionMetricsCollector(retention time.Duration) *ResolutionMetricsCollector {
	return &ResolutionMetricsCollector{
		metrics:           make(map[string]*FormatMetrics),
		retentionDuration: retention,
		cleanupInterval:   1 * time.Hour,
		globalMetrics: &GlobalMetrics{
			ResolutionsByFormat: make(map[string]int64),
			ResolutionsByTable:  make(map[string]int64),
			ResolutionsByHour:   make(map[int64]int64),
			StartTime:           time.Now(),
		},
	}
}

// RecordResolution records metrics for one schema resolution
func (mc *ResolutionMetricsCollector) RecordResolution(metrics *ResolutionMetrics) {
	if metrics == nil {
		return
	}

	outcome := "success"
	if !metrics.Success {
		outcome = "failure"
	}
	schemaResolutionsTotal.WithLabelValues(metrics.Format, outcome).Inc()
	schemaResolutionDuration.WithLabelValues(metrics.Format).Observe(metrics.Duration.Seconds())
	discoveredFiles.WithLabelValues(metrics.Format).Observe(float64(metrics.FileCount))

	durationNs := metrics.Duration.Nanoseconds()

	// Update per-format metrics
	mc.metricsMutex.Lock()
	fm, exists := mc.metrics[metrics.Format]
	if !exists {
		fm = &FormatMetrics{
			Format:            metrics.Format,
			MinDurationNs:     durationNs,
			MaxDurationNs:     durationNs,
			ResolutionsByHour: make(map[int64]int64),
		}
		mc.metrics[metrics.Format] = fm
	}

	fm.TotalResolutions++
	fm.TotalDurationNs += durationNs
	fm.TotalFilesDiscovered += int64(metrics.FileCount)
	fm.LastResolutionTime = metrics.Timestamp

	if metrics.Success {
		fm.SuccessfulResolutions++
	} else {
		fm.FailedResolutions++
		fm.LastError = metrics.Error
		fm.LastErrorTime = metrics.Timestamp
	}

	if durationNs < fm.MinDurationNs {
		fm.MinDurationNs = durationNs
	}
	if durationNs > fm.MaxDurationNs {
		fm.MaxDurationNs = durationNs
	}

	fm.AvgDurationNs = fm.TotalDurationNs / fm.TotalResolutions

	hour := metrics.Timestamp.Truncate(time.Hour).Unix()
	fm.ResolutionsByHour[hour]++

	mc.metricsMutex.Unlock()

	// Update global metrics
	mc.globalMutex.Lock()
	mc.globalMetrics.TotalResolutions++
	mc.globalMetrics.TotalDurationNs += durationNs

	if metrics.Success {
		mc.globalMetrics.SuccessfulResolutions++
	} else {
		mc.globalMetrics.FailedResolutions++
	}

	mc.globalMetrics.ResolutionsByFormat[metrics.Format]++
	mc.globalMetrics.ResolutionsByTable[metrics.TableID]++
	mc.globalMetrics.ResolutionsByHour[hour]++

	mc.globalMutex.Unlock()
}

// GetFormatMetrics returns metrics for a specific format
func (mc *ResolutionMetricsCollector) GetFormatMetrics(formatName string) (*FormatMetrics, error) {
	mc.metricsMutex.RLock()
	defer mc.metricsMutex.RUnlock()

	metrics, exists := mc.metrics[formatName]
	if !exists {
		return nil, ErrFormatMetricsNotFound
	}

	// Return a copy to avoid race conditions
	copy := *metrics
	copy.ResolutionsByHour = make(map[int64]int64)
	for k, v := range metrics.ResolutionsByHour {
		copy.ResolutionsByHour[k] = v
	}

	return &copy, nil
}

// GetAllMetrics returns metrics for all formats
func (mc *ResolutionMetricsCollector) GetAllMetrics() map[string]*FormatMetrics {
	mc.metricsMutex.RLock()
	defer mc.metricsMutex.RUnlock()

	result := make(map[string]*FormatMetrics)
	for name, metrics := range mc.metrics {
		copy := *metrics
		copy.ResolutionsByHour = make(map[int64]int64)
		for k, v := range metrics.ResolutionsByHour {
			copy.ResolutionsByHour[k] = v
		}
		result[name] = &copy
	}

	return result
}

// GetGlobalMetrics returns gateway-wide resolution metrics
func (mc *ResolutionMetricsCollector) GetGlobalMetrics() *GlobalMetrics {
	mc.globalMutex.RLock()
	defer mc.globalMutex.RUnlock()

	copy := *mc.globalMetrics
	copy.ResolutionsByFormat = make(map[string]int64)
	copy.ResolutionsByTable = make(map[string]int64)
	copy.ResolutionsByHour = make(map[int64]int64)

	for k, v := range mc.globalMetrics.ResolutionsByFormat {
		copy.ResolutionsByFormat[k] = v
	}
	for k, v := range mc.globalMetrics.ResolutionsByTable {
		copy.ResolutionsByTable[k] = v
	}
	for k, v := range mc.globalMetrics.ResolutionsByHour {
		copy.ResolutionsByHour[k] = v
	}

	return &copy
}

// GetMetricsSummary returns a summary of resolution metrics
func (mc *ResolutionMetricsCollector) GetMetricsSummary() map[string]interface{} {
	global := mc.GetGlobalMetrics()

	uptime := time.Since(global.StartTime)

	summary := map[string]interface{}{
		"uptime_seconds":         uptime.Seconds(),
		"total_resolutions":      global.TotalResolutions,
		"successful_resolutions": global.SuccessfulResolutions,
		"failed_resolutions":     global.FailedResolutions,
		"success_rate":           0.0,
		"avg_duration_ms":        0.0,
		"resolutions_by_format":  global.ResolutionsByFormat,
		"active_tables":          len(global.ResolutionsByTable),
	}

	if global.TotalResolutions > 0 {
		summary["success_rate"] = float64(global.SuccessfulResolutions) / float64(global.TotalResolutions)
		summary["avg_duration_ms"] = (float64(global.TotalDurationNs) / float64(global.TotalResolutions)) / 1e6
	}

	return summary
}

// CleanupOldMetrics removes hourly stats older than the retention period
func (mc *ResolutionMetricsCollector) CleanupOldMetrics() {
	mc.metricsMutex.Lock()
	defer mc.metricsMutex.Unlock()

	cutoffTime := time.Now().Add(-mc.retentionDuration).Unix()

	for _, metrics := range mc.metrics {
		for hour := range metrics.ResolutionsByHour {
			if hour < cutoffTime {
				delete(metrics.ResolutionsByHour, hour)
			}
		}
	}

	mc.globalMutex.Lock()
	defer mc.globalMutex.Unlock()

	for hour := range mc.globalMetrics.ResolutionsByHour {
		if hour < cutoffTime {
			delete(mc.globalMetrics.ResolutionsByHour, hour)
		}
	}
}

// StartCleanupRoutine starts a background routine to clean up old metrics
func (mc *ResolutionMetricsCollector) StartCleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(mc.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mc.CleanupOldMetrics()
		}
	}
}

// Errors
var (
	ErrFormatMetricsNotFound = fmt.Errorf("format metrics not found")
)
