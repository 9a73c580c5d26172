package k8s

import "time"

const (
	// Service account paths - default Kubernetes in-cluster locations
	DefaultServiceAccountPath = "/var/run/secrets/kubernetes.io/serviceaccount"
	DefaultTokenPath          = DefaultServiceAccountPath + "/token"
	DefaultCACertPath         = DefaultServiceAccountPath + "/ca.crt"
	DefaultNamespacePath      = DefaultServiceAccountPath + "/namespace"

	// Default performance settings
	DefaultQPSLimit   = 20.0
	DefaultBurstLimit = 30
	DefaultTimeout    = 30 * time.Second

	// DefaultNamespace is used when a caller does not name one.
	DefaultNamespace = "default"

	// DefaultKubeconfigRelPath is the kubeconfig location relative to the
	// user's home directory.
	DefaultKubeconfigRelPath = ".kube/config"
)
