package services

import (
	"context"

	"github.com/giantswarm/kubectl-mcp/internal/executor"
)

// Cluster connectivity states reported by Ping.
const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
)

// PingResult is the outcome of a connectivity check. Details carries the
// full command result for diagnosis.
type PingResult struct {
	Status  string          `json:"status"`
	Details executor.Result `json:"details"`
}

// ClusterService reports on the cluster as a whole.
type ClusterService struct {
	exec Commander
}

// NewClusterService returns a ClusterService.
func NewClusterService(deps Deps) *ClusterService {
	return &ClusterService{exec: deps.Executor}
}

// Ping runs kubectl cluster-info, bypassing the cache.
func (s *ClusterService) Ping(ctx context.Context) PingResult {
	res := s.exec.Execute(ctx, "kubectl cluster-info", executor.WithoutCache())
	status := StatusDisconnected
	if res.Success {
		status = StatusConnected
	}
	return PingResult{Status: status, Details: res}
}
