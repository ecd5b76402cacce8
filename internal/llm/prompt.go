package llm

import (
	"strings"

	"llm-monitor/internal/analytics"
	"llm-monitor/internal/models"

	"github.com/valyala/fasttemplate"
)

const reportTemplate = `System Monitoring Report:

Max CPU Usage: {{max_cpu}}%
Max Memory Usage: {{max_memory}}%
Max Disk Usage: {{max_disk}}%

Alerts:
{{alerts}}

Give a professional analysis and improvement suggestions.
`

var report = fasttemplate.New(reportTemplate, "{{", "}}")

// BuildPrompt renders the monitoring report sent to the model.
func BuildPrompt(result models.AnalysisResult) string {
	return report.ExecuteString(map[string]interface{}{
		"max_cpu":    analytics.FormatPercent(result.MaxCPU),
		"max_memory": analytics.FormatPercent(result.MaxMemory),
		"max_disk":   analytics.FormatPercent(result.MaxDisk),
		"alerts":     strings.Join(result.Alerts, ", "),
	})
}
