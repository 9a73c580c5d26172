package k8s

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/giantswarm/kubectl-mcp/internal/logging"
)

// ClientConfig configures the typed client.
type ClientConfig struct {
	// KubeconfigPath overrides the KUBECONFIG environment variable.
	KubeconfigPath string

	// InCluster uses the pod's service account instead of a kubeconfig.
	InCluster bool

	QPSLimit   float32
	BurstLimit int
	Timeout    time.Duration

	Logger *slog.Logger
}

// KubeconfigPath returns the kubeconfig location: explicit wins, then the
// KUBECONFIG environment variable, then ~/.kube/config. A leading "~/" is
// expanded.
func KubeconfigPath(explicit string) string {
	path := explicit
	if path == "" {
		path = os.Getenv("KUBECONFIG")
	}
	if path == "" {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, DefaultKubeconfigRelPath)
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	return path
}

// NewClientset builds a typed clientset from cfg.
func NewClientset(cfg ClientConfig) (kubernetes.Interface, error) {
	restConfig, err := RestConfig(cfg)
	if err != nil {
		return nil, err
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}
	return clientset, nil
}

// RestConfig builds the REST configuration for cfg, applying the rate limits
// and timeout.
func RestConfig(cfg ClientConfig) (*rest.Config, error) {
	if cfg.QPSLimit == 0 {
		cfg.QPSLimit = DefaultQPSLimit
	}
	if cfg.BurstLimit == 0 {
		cfg.BurstLimit = DefaultBurstLimit
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var restConfig *rest.Config
	var err error
	if cfg.InCluster {
		if err := validateInClusterEnvironment(); err != nil {
			return nil, err
		}
		restConfig, err = rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create in-cluster rest config: %w", err)
		}
		logger.Info("Using in-cluster authentication", logging.Host(restConfig.Host))
	} else {
		path := KubeconfigPath(cfg.KubeconfigPath)
		loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
		loadingRules.ExplicitPath = path

		restConfig, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
			loadingRules,
			&clientcmd.ConfigOverrides{},
		).ClientConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig %q: %w", path, err)
		}
		logger.Info("Using kubeconfig authentication", logging.Host(restConfig.Host))
	}

	restConfig.QPS = cfg.QPSLimit
	restConfig.Burst = cfg.BurstLimit
	restConfig.Timeout = cfg.Timeout
	return restConfig, nil
}

// validateInClusterEnvironment checks that the service account files are mounted.
func validateInClusterEnvironment() error {
	if _, err := os.Stat(DefaultTokenPath); os.IsNotExist(err) {
		return fmt.Errorf("service account token not found at %s", DefaultTokenPath)
	}
	if _, err := os.Stat(DefaultCACertPath); os.IsNotExist(err) {
		return fmt.Errorf("service account CA certificate not found at %s", DefaultCACertPath)
	}
	if _, err := os.Stat(DefaultNamespacePath); os.IsNotExist(err) {
		return fmt.Errorf("service account namespace not found at %s", DefaultNamespacePath)
	}
	return nil
}
