package services

import (
	"fmt"
	"slices"
	"strings"
)

// Registry maps resource kinds, including their common aliases, to services.
type Registry struct {
	services map[string]ResourceService
	kinds    []string
}

var kindAliases = map[string]string{
	"pods":        KindPod,
	"po":          KindPod,
	"deployments": KindDeployment,
	"deploy":      KindDeployment,
	"namespaces":  KindNamespace,
	"ns":          KindNamespace,
}

// NewRegistry returns a registry of the given services keyed by Kind.
func NewRegistry(services ...ResourceService) *Registry {
	r := &Registry{services: make(map[string]ResourceService, len(services))}
	for _, s := range services {
		r.services[s.Kind()] = s
		r.kinds = append(r.kinds, s.Kind())
	}
	slices.Sort(r.kinds)
	return r
}

// Lookup returns the service for kind.
func (r *Registry) Lookup(kind string) (ResourceService, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if canonical, ok := kindAliases[kind]; ok {
		kind = canonical
	}
	s, ok := r.services[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported resource kind %q (supported: %s)", kind, strings.Join(r.kinds, ", "))
	}
	return s, nil
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	return slices.Clone(r.kinds)
}
