package models

// MetricSample is one row of an uploaded metrics sheet.
type MetricSample struct {
	Timestamp   string  `json:"timestamp"`
	CPUUsage    float64 `json:"cpu_usage"`
	MemoryUsage float64 `json:"memory_usage"`
	DiskUsage   float64 `json:"disk_usage"`
}

type AnalysisResult struct {
	Alerts    []string `json:"alerts"`
	MaxCPU    float64  `json:"max_cpu"`
	MaxMemory float64  `json:"max_memory"`
	MaxDisk   float64  `json:"max_disk"`
	Samples   int      `json:"samples"`
}

// AnalyzeResponse is the success body of POST /analyze.
type AnalyzeResponse struct {
	Alerts   []string `json:"alerts"`
	Analysis string   `json:"analysis"`
}

// ErrorResponse is returned with status 200; callers detect failure by the key.
type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	LLMModel  string `json:"llm_model"`
}

type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type GenerateResponse struct {
	Response string `json:"response"`
}
