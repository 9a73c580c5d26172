package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"

	"github.com/giantswarm/kubectl-mcp/internal/events"
	"github.com/giantswarm/kubectl-mcp/internal/executor"
)

// DefaultImage is used when a create request names no image.
const DefaultImage = "nginx:latest"

// PodInfo describes a pod.
type PodInfo struct {
	Name      string            `json:"name"`
	Namespace string            `json:"namespace"`
	Phase     string            `json:"status"`
	IP        string            `json:"ip,omitempty"`
	Node      string            `json:"node,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
}

func podInfo(p *corev1.Pod) PodInfo {
	return PodInfo{
		Name:      p.Name,
		Namespace: p.Namespace,
		Phase:     string(p.Status.Phase),
		IP:        p.Status.PodIP,
		Node:      p.Spec.NodeName,
		Labels:    p.Labels,
	}
}

// PodService manages pods.
type PodService struct {
	base
	portForwardTimeout time.Duration
}

var _ ResourceService = (*PodService)(nil)

// NewPodService returns a PodService.
func NewPodService(deps Deps) *PodService {
	return &PodService{base: newBase(KindPod, deps), portForwardTimeout: deps.PortForwardTimeout}
}

// Create creates a single-container pod named after the pod. Labels default
// to app=<name>.
func (s *PodService) Create(ctx context.Context, req Request) Response {
	if err := req.validateTarget(KindPod); err != nil {
		return Failure("%v", err)
	}
	ns := req.namespace()
	image := req.Image
	if image == "" {
		image = DefaultImage
	}
	labels := req.Labels
	if len(labels) == 0 {
		labels = map[string]string{"app": req.Name}
	}

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: req.Name, Namespace: ns, Labels: labels},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{{
				Name:  req.Name,
				Image: image,
				Env:   envVars(req.Env),
			}},
		},
	}

	res := call(ctx, &s.base, "create", func(c kubernetes.Interface) (*corev1.Pod, error) {
		return c.CoreV1().Pods(ns).Create(ctx, pod, metav1.CreateOptions{})
	})
	if !res.OK() {
		if !res.Outcome.Fallback() {
			return transportFailure("create", KindPod, req.Name, res.Outcome)
		}
		cmd := joinArgs("kubectl run", executor.QuoteArg(req.Name), "--image="+executor.QuoteArg(image),
			"--labels="+executor.QuoteArg(strings.Join(sortedPairs(labels), ",")))
		for _, kv := range sortedPairs(req.Env) {
			cmd += " --env=" + executor.QuoteArg(kv)
		}
		resp := s.fallback(ctx, "create", res.Outcome, cmd, executor.InNamespace(ns))
		if resp.Success {
			s.publish(ctx, events.Created, map[string]any{"name": req.Name, "namespace": ns, "source": "command"})
		}
		return resp
	}

	created := res.Value
	s.publish(ctx, events.Created, map[string]any{
		"name":      req.Name,
		"namespace": ns,
		"status":    string(created.Status.Phase),
		"pod_ip":    created.Status.PodIP,
	})
	return Response{
		Success:  true,
		Message:  fmt.Sprintf("Pod %s created", req.Name),
		Resource: podInfo(created),
	}
}

// Get returns a pod.
func (s *PodService) Get(ctx context.Context, req Request) Response {
	if err := req.validateTarget(KindPod); err != nil {
		return Failure("%v", err)
	}
	ns := req.namespace()
	res := call(ctx, &s.base, "get", func(c kubernetes.Interface) (*corev1.Pod, error) {
		return c.CoreV1().Pods(ns).Get(ctx, req.Name, metav1.GetOptions{})
	})
	if !res.OK() {
		if !res.Outcome.Fallback() {
			return transportFailure("get", KindPod, req.Name, res.Outcome)
		}
		return s.fallback(ctx, "get", res.Outcome, "kubectl get pod "+executor.QuoteArg(req.Name)+" -o json", executor.InNamespace(ns))
	}
	return Response{Success: true, Resource: podInfo(res.Value)}
}

// Update replaces the pod's labels with req.Labels.
func (s *PodService) Update(ctx context.Context, req Request) Response {
	return s.UpdateLabels(ctx, req.Name, req.namespace(), req.Labels)
}

// UpdateLabels replaces the labels of a pod with labels. Callers wanting a
// partial update must merge with the current labels first.
func (s *PodService) UpdateLabels(ctx context.Context, name, namespace string, labels map[string]string) Response {
	if namespace == "" {
		namespace = Request{}.namespace()
	}
	if err := (Request{Name: name, Namespace: namespace}).validateTarget(KindPod); err != nil {
		return Failure("%v", err)
	}
	if labels == nil {
		labels = map[string]string{}
	}
	patch, err := replaceLabelsPatch(labels)
	if err != nil {
		return Failure("Label update failed: %v", err)
	}

	res := call(ctx, &s.base, "update", func(c kubernetes.Interface) (*corev1.Pod, error) {
		return c.CoreV1().Pods(namespace).Patch(ctx, name, types.JSONPatchType, patch, metav1.PatchOptions{})
	})
	if !res.OK() {
		if !res.Outcome.Fallback() {
			return transportFailure("update", KindPod, name, res.Outcome)
		}
		cmd := fmt.Sprintf("kubectl patch pod %s --type=json -p %s", executor.QuoteArg(name), executor.QuoteArg(string(patch)))
		resp := s.fallback(ctx, "update", res.Outcome, cmd, executor.InNamespace(namespace))
		if resp.Success {
			s.publish(ctx, events.Updated, map[string]any{"name": name, "namespace": namespace, "labels": labels})
		}
		return resp
	}

	updated := res.Value
	s.publish(ctx, events.Updated, map[string]any{
		"name":      name,
		"namespace": namespace,
		"labels":    updated.Labels,
	})
	return Response{
		Success:  true,
		Message:  fmt.Sprintf("Labels updated for pod %s", name),
		Resource: podInfo(updated),
	}
}

// Delete deletes a pod, honouring req.GracePeriod when set.
func (s *PodService) Delete(ctx context.Context, req Request) Response {
	if err := req.validateTarget(KindPod); err != nil {
		return Failure("%v", err)
	}
	ns := req.namespace()
	res := call(ctx, &s.base, "delete", func(c kubernetes.Interface) (struct{}, error) {
		return struct{}{}, c.CoreV1().Pods(ns).Delete(ctx, req.Name, metav1.DeleteOptions{GracePeriodSeconds: req.GracePeriod})
	})
	if !res.OK() {
		if !res.Outcome.Fallback() {
			return transportFailure("delete", KindPod, req.Name, res.Outcome)
		}
		cmd := "kubectl delete pod " + executor.QuoteArg(req.Name) + gracePeriodFlag(req.GracePeriod)
		resp := s.fallback(ctx, "delete", res.Outcome, cmd, executor.InNamespace(ns))
		if resp.Success {
			s.publish(ctx, events.Deleted, map[string]any{"name": req.Name, "namespace": ns, "source": "command"})
		}
		return resp
	}

	s.publish(ctx, events.Deleted, map[string]any{"name": req.Name, "namespace": ns})
	return Response{Success: true, Message: fmt.Sprintf("Pod %s scheduled for deletion", req.Name)}
}

// List lists pods in a namespace, optionally filtered by label selector.
func (s *PodService) List(ctx context.Context, req Request) Response {
	ns := req.namespace()
	if err := validateLabelValue("namespace", ns); err != nil {
		return Failure("%v", err)
	}
	res := call(ctx, &s.base, "list", func(c kubernetes.Interface) (*corev1.PodList, error) {
		return c.CoreV1().Pods(ns).List(ctx, metav1.ListOptions{LabelSelector: req.LabelSelector})
	})
	if !res.OK() {
		if !res.Outcome.Fallback() {
			return transportFailure("list", "pods", "", res.Outcome)
		}
		return s.fallback(ctx, "list", res.Outcome, "kubectl get pods"+selectorFlag(req.LabelSelector)+" -o json", executor.InNamespace(ns))
	}

	items := make([]PodInfo, 0, len(res.Value.Items))
	for i := range res.Value.Items {
		items = append(items, podInfo(&res.Value.Items[i]))
	}
	return Response{Success: true, Items: items}
}

// PortForward forwards localPort to podPort. The call blocks for the life of
// the forwarding session, bounded by the configured port-forward timeout.
func (s *PodService) PortForward(ctx context.Context, name, namespace string, localPort, podPort int) Response {
	if namespace == "" {
		namespace = Request{}.namespace()
	}
	if err := (Request{Name: name, Namespace: namespace}).validateTarget(KindPod); err != nil {
		return Failure("%v", err)
	}
	if !validPort(localPort) || !validPort(podPort) {
		return Failure("invalid port mapping %d:%d", localPort, podPort)
	}
	cmd := fmt.Sprintf("kubectl port-forward %s %d:%d", executor.QuoteArg(name), localPort, podPort)
	return FromCommand(s.exec.Execute(ctx, cmd,
		executor.InNamespace(namespace),
		executor.WithTimeoutOverride(s.forwardTimeout())))
}

func (s *PodService) forwardTimeout() time.Duration {
	if s.portForwardTimeout > 0 {
		return s.portForwardTimeout
	}
	return executor.PortForwardTimeout
}

// Exec runs command inside a pod, in container when given.
func (s *PodService) Exec(ctx context.Context, name, namespace, container, command string) Response {
	if namespace == "" {
		namespace = Request{}.namespace()
	}
	if err := (Request{Name: name, Namespace: namespace}).validateTarget(KindPod); err != nil {
		return Failure("%v", err)
	}
	if container != "" {
		if err := validateLabelValue("container", container); err != nil {
			return Failure("%v", err)
		}
	}
	if strings.TrimSpace(command) == "" {
		return Failure("command must not be empty")
	}
	cmd := "kubectl exec " + executor.QuoteArg(name)
	if container != "" {
		cmd += " -c " + executor.QuoteArg(container)
	}
	cmd += " -- " + command
	return FromCommand(s.exec.Execute(ctx, cmd, executor.InNamespace(namespace)))
}

func envVars(env map[string]string) []corev1.EnvVar {
	if len(env) == 0 {
		return nil
	}
	out := make([]corev1.EnvVar, 0, len(env))
	for _, kv := range sortedPairs(env) {
		k, v, _ := strings.Cut(kv, "=")
		out = append(out, corev1.EnvVar{Name: k, Value: v})
	}
	return out
}

func replaceLabelsPatch(labels map[string]string) ([]byte, error) {
	return json.Marshal([]map[string]any{{
		"op":    "add",
		"path":  "/metadata/labels",
		"value": labels,
	}})
}

func gracePeriodFlag(seconds *int64) string {
	if seconds == nil {
		return ""
	}
	return " --grace-period=" + strconv.FormatInt(*seconds, 10)
}

func validPort(p int) bool {
	return p > 0 && p <= 65535
}
