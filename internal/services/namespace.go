package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"

	"github.com/giantswarm/kubectl-mcp/internal/events"
	"github.com/giantswarm/kubectl-mcp/internal/executor"
)

const (
	reservedNamespacePrefix = "kube-"

	// DefaultNamespaceOutput is the list output format when none is given.
	DefaultNamespaceOutput = "wide"
)

// ValidateNamespaceName is the rule for namespaces created here: a DNS-1123
// label starting with a letter and outside the reserved kube- prefix.
func ValidateNamespaceName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("namespace name must not be empty")
	case strings.HasPrefix(name, reservedNamespacePrefix):
		return fmt.Errorf("namespace name %q uses the reserved prefix %q", name, reservedNamespacePrefix)
	case name[0] < 'a' || name[0] > 'z':
		return fmt.Errorf("namespace name %q must start with a lowercase letter", name)
	}
	return validateLabelValue("namespace", name)
}

// NamespaceInfo describes a namespace.
type NamespaceInfo struct {
	Name   string            `json:"name"`
	Phase  string            `json:"status"`
	Labels map[string]string `json:"labels,omitempty"`
}

func namespaceInfo(n *corev1.Namespace) NamespaceInfo {
	return NamespaceInfo{Name: n.Name, Phase: string(n.Status.Phase), Labels: n.Labels}
}

// NamespaceService manages namespaces. Namespaces are cluster scoped, so
// Request.Namespace is ignored and Request.Name names the namespace.
type NamespaceService struct {
	base
}

var _ ResourceService = (*NamespaceService)(nil)

// NewNamespaceService returns a NamespaceService.
func NewNamespaceService(deps Deps) *NamespaceService {
	return &NamespaceService{base: newBase(KindNamespace, deps)}
}

// Create creates a namespace with optional labels.
func (s *NamespaceService) Create(ctx context.Context, req Request) Response {
	if err := ValidateNamespaceName(req.Name); err != nil {
		return Failure("Invalid namespace name: %v", err)
	}

	namespace := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: req.Name, Labels: req.Labels}}
	res := call(ctx, &s.base, "create", func(c kubernetes.Interface) (*corev1.Namespace, error) {
		return c.CoreV1().Namespaces().Create(ctx, namespace, metav1.CreateOptions{})
	})
	if !res.OK() {
		if !res.Outcome.Fallback() {
			return transportFailure("create", KindNamespace, req.Name, res.Outcome)
		}
		resp := s.fallback(ctx, "create", res.Outcome, "kubectl create namespace "+executor.QuoteArg(req.Name))
		if resp.Success && len(req.Labels) > 0 {
			labelled := s.exec.Execute(ctx, labelCommand(req.Name, req.Labels))
			if !labelled.Success {
				resp.Success = false
				resp.Error = "namespace created but labelling failed: " + labelled.Error
			}
		}
		if resp.Success {
			s.publish(ctx, events.Created, map[string]any{"name": req.Name, "labels": req.Labels, "source": "command"})
		}
		return resp
	}

	s.publish(ctx, events.Created, map[string]any{"name": req.Name, "labels": res.Value.Labels})
	return Response{
		Success:  true,
		Message:  fmt.Sprintf("Namespace %s created", req.Name),
		Resource: namespaceInfo(res.Value),
	}
}

// Get returns a namespace.
func (s *NamespaceService) Get(ctx context.Context, req Request) Response {
	if err := validateLabelValue("namespace", req.Name); err != nil {
		return Failure("%v", err)
	}
	res := call(ctx, &s.base, "get", func(c kubernetes.Interface) (*corev1.Namespace, error) {
		return c.CoreV1().Namespaces().Get(ctx, req.Name, metav1.GetOptions{})
	})
	if !res.OK() {
		if !res.Outcome.Fallback() {
			return transportFailure("get", KindNamespace, req.Name, res.Outcome)
		}
		return s.fallback(ctx, "get", res.Outcome, "kubectl get namespace "+executor.QuoteArg(req.Name)+" -o json")
	}
	return Response{Success: true, Resource: namespaceInfo(res.Value)}
}

// Update merges req.Labels into the namespace labels.
func (s *NamespaceService) Update(ctx context.Context, req Request) Response {
	return s.Label(ctx, req.Name, req.Labels)
}

// Label merges labels into the labels of namespace name, overwriting
// existing keys.
func (s *NamespaceService) Label(ctx context.Context, name string, labels map[string]string) Response {
	if err := validateLabelValue("namespace", name); err != nil {
		return Failure("%v", err)
	}
	if len(labels) == 0 {
		return Failure("Label update failed: no labels given")
	}
	patch, err := mergeLabelsPatch(labels)
	if err != nil {
		return Failure("Label update failed: %v", err)
	}

	res := call(ctx, &s.base, "update", func(c kubernetes.Interface) (*corev1.Namespace, error) {
		return c.CoreV1().Namespaces().Patch(ctx, name, types.MergePatchType, patch, metav1.PatchOptions{})
	})
	if !res.OK() {
		if !res.Outcome.Fallback() {
			return transportFailure("update", KindNamespace, name, res.Outcome)
		}
		resp := s.fallback(ctx, "update", res.Outcome, labelCommand(name, labels))
		if resp.Success {
			s.publish(ctx, events.Updated, map[string]any{"name": name, "labels": labels, "source": "command"})
		}
		return resp
	}

	s.publish(ctx, events.Updated, map[string]any{"name": name, "labels": res.Value.Labels})
	return Response{
		Success:  true,
		Message:  fmt.Sprintf("Labels updated for namespace %s", name),
		Resource: namespaceInfo(res.Value),
	}
}

// Delete deletes a namespace. Force requests immediate deletion.
func (s *NamespaceService) Delete(ctx context.Context, req Request) Response {
	if err := validateLabelValue("namespace", req.Name); err != nil {
		return Failure("%v", err)
	}
	opts := metav1.DeleteOptions{GracePeriodSeconds: req.GracePeriod}
	if req.Force {
		zero := int64(0)
		opts.GracePeriodSeconds = &zero
	}

	res := call(ctx, &s.base, "delete", func(c kubernetes.Interface) (struct{}, error) {
		return struct{}{}, c.CoreV1().Namespaces().Delete(ctx, req.Name, opts)
	})
	if !res.OK() {
		if !res.Outcome.Fallback() {
			return transportFailure("delete", KindNamespace, req.Name, res.Outcome)
		}
		cmd := "kubectl delete namespace " + executor.QuoteArg(req.Name)
		if req.Force {
			cmd += " --force --grace-period=0"
		}
		var callOpts []executor.CallOption
		if req.Timeout > 0 {
			callOpts = append(callOpts, executor.WithTimeoutOverride(req.Timeout))
		}
		resp := s.fallback(ctx, "delete", res.Outcome, cmd, callOpts...)
		if resp.Success {
			s.publish(ctx, events.Deleted, map[string]any{"name": req.Name, "source": "command"})
		}
		return resp
	}

	s.publish(ctx, events.Deleted, map[string]any{"name": req.Name})
	return Response{Success: true, Message: fmt.Sprintf("Namespace %s scheduled for deletion", req.Name)}
}

// List lists namespaces rendered in req.OutputFormat (wide, json or yaml).
func (s *NamespaceService) List(ctx context.Context, req Request) Response {
	format := req.OutputFormat
	if format == "" {
		format = DefaultNamespaceOutput
	}
	return FromCommand(s.exec.Execute(ctx, "kubectl get namespaces -o "+executor.QuoteArg(format)))
}

// Describe returns the textual description of a namespace.
func (s *NamespaceService) Describe(ctx context.Context, name string) Response {
	if err := validateLabelValue("namespace", name); err != nil {
		return Failure("%v", err)
	}
	return FromCommand(s.exec.Execute(ctx, "kubectl describe namespace "+executor.QuoteArg(name)))
}

// Exists reports whether namespace name exists. The lookup bypasses the
// executor cache so a namespace created or deleted earlier is seen.
func (s *NamespaceService) Exists(ctx context.Context, name string) bool {
	if validateLabelValue("namespace", name) != nil {
		return false
	}
	res := s.exec.Execute(ctx, "kubectl get namespace "+executor.QuoteArg(name)+" --ignore-not-found", executor.WithoutCache())
	return res.Success && strings.Contains(res.Output, name)
}

func labelCommand(name string, labels map[string]string) string {
	cmd := "kubectl label namespace " + executor.QuoteArg(name)
	for _, kv := range sortedPairs(labels) {
		cmd += " " + executor.QuoteArg(kv)
	}
	return cmd + " --overwrite"
}

func mergeLabelsPatch(labels map[string]string) ([]byte, error) {
	return json.Marshal(map[string]any{"metadata": map[string]any{"labels": labels}})
}
