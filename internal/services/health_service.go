package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/IsnaAyustin/final-project-ds/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	dataset    *DatasetService
	prediction *PredictionService
	startTime  time.Time
	logger     *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// NewHealthService creates a health service. Either dependency may be nil,
// which reports that component as not ready.
func NewHealthService(dataset *DatasetService, prediction *PredictionService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		dataset:    dataset,
		prediction: prediction,
		startTime:  time.Now(),
		logger:     logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   contracts.Version,
	}
}

// ReadinessCheck reports whether the dataset and model are loaded
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Services: map[string]ServiceHealth{
			"dataset": hs.checkDataset(),
			"model":   hs.checkModel(),
		},
	}

	for _, sh := range status.Services {
		if sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}
	return status
}

// Ready reports whether every component is ready
func (hs *HealthService) Ready(ctx context.Context) bool {
	return hs.ReadinessCheck(ctx).Status == "ready"
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	result := map[string]interface{}{
		"version":      info.Version,
		"stage":        info.Stage,
		"go_version":   info.GoVersion,
		"os":           info.OS,
		"arch":         info.Architecture,
		"api_version":  info.APIVersion,
		"model_format": info.ModelFormat,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if info.BuildTime != "unknown" {
		result["build_time"] = info.BuildTime
	}
	if info.GitCommit != "unknown" {
		result["git_commit"] = info.GitCommit
	}
	if hs.dataset != nil {
		result["dataset_fingerprint"] = hs.dataset.Info().Fingerprint
	}
	if hs.prediction != nil {
		result["model"] = hs.prediction.ModelName()
	}
	return result
}

func (hs *HealthService) checkDataset() ServiceHealth {
	if hs.dataset == nil {
		return ServiceHealth{Status: "not_ready", Message: "dataset not loaded"}
	}
	info := hs.dataset.Info()
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d rows prepared", hs.dataset.Table().Len()),
		Detail:  info.Fingerprint,
	}
}

func (hs *HealthService) checkModel() ServiceHealth {
	if hs.prediction == nil {
		return ServiceHealth{Status: "not_ready", Message: "model not loaded"}
	}
	msg := "attribution available"
	if !hs.prediction.CanExplain() {
		msg = "attribution not supported"
	}
	return ServiceHealth{
		Status:  "ready",
		Message: msg,
		Detail:  hs.prediction.ModelName(),
	}
}
