package analytics

import (
	"fmt"
	"math"
	"strconv"

	"llm-monitor/internal/models"
)

const StableAlert = "System is Stable ✅"

// Thresholds are exclusive upper bounds in percent.
type Thresholds struct {
	CPU    float64
	Memory float64
	Disk   float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{CPU: 80, Memory: 80, Disk: 90}
}

type Analyzer struct {
	thresholds Thresholds
}

func NewAnalyzer(thresholds Thresholds) *Analyzer {
	return &Analyzer{thresholds: thresholds}
}

// Analyze parses an uploaded sheet and evaluates it. The returned error is a
// *ParseError or a *ValidationError.
func (a *Analyzer) Analyze(filename string, data []byte) (models.AnalysisResult, error) {
	samples, err := ParseSamples(filename, data)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	return a.Evaluate(samples)
}

// Evaluate computes column maxima and derives alerts. Every threshold is
// checked, so several alerts can fire at once.
func (a *Analyzer) Evaluate(samples []models.MetricSample) (models.AnalysisResult, error) {
	maxCPU, okCPU := columnMax(samples, func(s models.MetricSample) float64 { return s.CPUUsage })
	maxMem, okMem := columnMax(samples, func(s models.MetricSample) float64 { return s.MemoryUsage })
	maxDisk, okDisk := columnMax(samples, func(s models.MetricSample) float64 { return s.DiskUsage })
	if !okCPU || !okMem || !okDisk {
		return models.AnalysisResult{}, &ValidationError{Err: ErrNoSamples}
	}

	result := models.AnalysisResult{
		MaxCPU:    maxCPU,
		MaxMemory: maxMem,
		MaxDisk:   maxDisk,
		Samples:   len(samples),
	}

	if maxCPU > a.thresholds.CPU {
		result.Alerts = append(result.Alerts, fmt.Sprintf("High CPU Usage Detected (>%s%%)", FormatPercent(a.thresholds.CPU)))
	}
	if maxMem > a.thresholds.Memory {
		result.Alerts = append(result.Alerts, fmt.Sprintf("High Memory Usage Detected (>%s%%)", FormatPercent(a.thresholds.Memory)))
	}
	if maxDisk > a.thresholds.Disk {
		result.Alerts = append(result.Alerts, fmt.Sprintf("High Disk Usage Detected (>%s%%)", FormatPercent(a.thresholds.Disk)))
	}
	if len(result.Alerts) == 0 {
		result.Alerts = []string{StableAlert}
	}

	return result, nil
}

// FormatPercent renders v with the shortest representation that parses back
// to the same float.
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// columnMax skips NaN cells; ok is false when the column holds no values.
func columnMax(samples []models.MetricSample, get func(models.MetricSample) float64) (float64, bool) {
	best := math.Inf(-1)
	found := false
	for _, s := range samples {
		v := get(s)
		if math.IsNaN(v) {
			continue
		}
		if !found || v > best {
			best = v
		}
		found = true
	}
	return best, found
}
