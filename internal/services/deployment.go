package services

import (
	"context"
	"encoding/json"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	"k8s.io/utils/ptr"

	"github.com/giantswarm/kubectl-mcp/internal/events"
	"github.com/giantswarm/kubectl-mcp/internal/executor"
)

// DeploymentInfo describes a deployment.
type DeploymentInfo struct {
	Name      string            `json:"name"`
	Namespace string            `json:"namespace"`
	Replicas  int32             `json:"replicas"`
	Available int32             `json:"available"`
	Image     string            `json:"image,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
	Selector  map[string]string `json:"selector,omitempty"`
}

func deploymentInfo(d *appsv1.Deployment) DeploymentInfo {
	info := DeploymentInfo{
		Name:      d.Name,
		Namespace: d.Namespace,
		Available: d.Status.AvailableReplicas,
		Replicas:  ptr.Deref(d.Spec.Replicas, 0),
		Labels:    d.Labels,
	}
	if d.Spec.Selector != nil {
		info.Selector = d.Spec.Selector.MatchLabels
	}
	if containers := d.Spec.Template.Spec.Containers; len(containers) > 0 {
		info.Image = containers[0].Image
	}
	return info
}

// DeploymentService manages deployments.
type DeploymentService struct {
	base
}

var _ ResourceService = (*DeploymentService)(nil)

// NewDeploymentService returns a DeploymentService.
func NewDeploymentService(deps Deps) *DeploymentService {
	return &DeploymentService{base: newBase(KindDeployment, deps)}
}

// Create creates a deployment with a single container named after the
// deployment. Labels, used for the selector too, default to app=<name>.
func (s *DeploymentService) Create(ctx context.Context, req Request) Response {
	if err := req.validateTarget(KindDeployment); err != nil {
		return Failure("%v", err)
	}
	ns := req.namespace()
	image := req.Image
	if image == "" {
		image = DefaultImage
	}
	replicas := ptr.Deref(req.Replicas, 1)
	labels := req.Labels
	if len(labels) == 0 {
		labels = map[string]string{"app": req.Name}
	}

	container := corev1.Container{
		Name:  req.Name,
		Image: image,
		Env:   envVars(req.Env),
	}
	if req.ContainerPort > 0 {
		container.Ports = []corev1.ContainerPort{{ContainerPort: req.ContainerPort}}
	}
	if req.Resources != nil {
		requirements, err := resourceRequirements(req.Resources)
		if err != nil {
			return Failure("invalid resources: %v", err)
		}
		container.Resources = requirements
	}

	deployment := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: req.Name, Namespace: ns, Labels: labels},
		Spec: appsv1.DeploymentSpec{
			Replicas: ptr.To(replicas),
			Selector: &metav1.LabelSelector{MatchLabels: labels},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec:       corev1.PodSpec{Containers: []corev1.Container{container}},
			},
		},
	}

	res := call(ctx, &s.base, "create", func(c kubernetes.Interface) (*appsv1.Deployment, error) {
		return c.AppsV1().Deployments(ns).Create(ctx, deployment, metav1.CreateOptions{})
	})
	if !res.OK() {
		if !res.Outcome.Fallback() {
			return transportFailure("create", KindDeployment, req.Name, res.Outcome)
		}
		cmd := fmt.Sprintf("kubectl create deployment %s --image=%s --replicas=%d", executor.QuoteArg(req.Name), executor.QuoteArg(image), replicas)
		if req.ContainerPort > 0 {
			cmd += fmt.Sprintf(" --port=%d", req.ContainerPort)
		}
		resp := s.fallback(ctx, "create", res.Outcome, cmd, executor.InNamespace(ns))
		if resp.Success {
			s.publish(ctx, events.Created, map[string]any{"name": req.Name, "namespace": ns, "replicas": replicas, "source": "command"})
		}
		return resp
	}

	created := res.Value
	s.publish(ctx, events.Created, map[string]any{
		"name":      req.Name,
		"namespace": ns,
		"replicas":  replicas,
		"available": created.Status.AvailableReplicas,
	})
	return Response{
		Success:  true,
		Message:  fmt.Sprintf("Deployment %s created", req.Name),
		Resource: deploymentInfo(created),
	}
}

// Get returns a deployment.
func (s *DeploymentService) Get(ctx context.Context, req Request) Response {
	if err := req.validateTarget(KindDeployment); err != nil {
		return Failure("%v", err)
	}
	ns := req.namespace()
	res := call(ctx, &s.base, "get", func(c kubernetes.Interface) (*appsv1.Deployment, error) {
		return c.AppsV1().Deployments(ns).Get(ctx, req.Name, metav1.GetOptions{})
	})
	if !res.OK() {
		if !res.Outcome.Fallback() {
			return transportFailure("get", KindDeployment, req.Name, res.Outcome)
		}
		return s.fallback(ctx, "get", res.Outcome, "kubectl get deployment "+executor.QuoteArg(req.Name)+" -o json", executor.InNamespace(ns))
	}
	return Response{Success: true, Resource: deploymentInfo(res.Value)}
}

// Update patches replicas, image and labels; only supplied fields change.
// Labels are applied to the deployment and its pod template. The selector is
// immutable and is left alone.
func (s *DeploymentService) Update(ctx context.Context, req Request) Response {
	if err := req.validateTarget(KindDeployment); err != nil {
		return Failure("%v", err)
	}
	ns := req.namespace()
	if req.Replicas == nil && req.Image == "" && len(req.Labels) == 0 {
		return Failure("Deployment update failed: nothing to update")
	}

	patch, err := deploymentPatch(req)
	if err != nil {
		return Failure("Deployment update failed: %v", err)
	}

	res := call(ctx, &s.base, "update", func(c kubernetes.Interface) (*appsv1.Deployment, error) {
		return c.AppsV1().Deployments(ns).Patch(ctx, req.Name, types.StrategicMergePatchType, patch, metav1.PatchOptions{})
	})
	if !res.OK() {
		if !res.Outcome.Fallback() {
			return transportFailure("update", KindDeployment, req.Name, res.Outcome)
		}
		cmd := fmt.Sprintf("kubectl patch deployment %s --type=strategic -p %s", executor.QuoteArg(req.Name), executor.QuoteArg(string(patch)))
		resp := s.fallback(ctx, "update", res.Outcome, cmd, executor.InNamespace(ns))
		if resp.Success {
			data := map[string]any{"name": req.Name, "namespace": ns, "source": "command"}
			if req.Replicas != nil {
				data["replicas"] = *req.Replicas
			}
			s.publish(ctx, events.Updated, data)
		}
		return resp
	}

	updated := deploymentInfo(res.Value)
	s.publish(ctx, events.Updated, map[string]any{
		"name":      req.Name,
		"namespace": ns,
		"replicas":  updated.Replicas,
		"available": updated.Available,
	})
	return Response{
		Success:  true,
		Message:  fmt.Sprintf("Deployment %s updated", req.Name),
		Resource: updated,
	}
}

// Delete deletes a deployment, honouring req.GracePeriod when set.
func (s *DeploymentService) Delete(ctx context.Context, req Request) Response {
	if err := req.validateTarget(KindDeployment); err != nil {
		return Failure("%v", err)
	}
	ns := req.namespace()
	res := call(ctx, &s.base, "delete", func(c kubernetes.Interface) (struct{}, error) {
		return struct{}{}, c.AppsV1().Deployments(ns).Delete(ctx, req.Name, metav1.DeleteOptions{GracePeriodSeconds: req.GracePeriod})
	})
	if !res.OK() {
		if !res.Outcome.Fallback() {
			return transportFailure("delete", KindDeployment, req.Name, res.Outcome)
		}
		cmd := "kubectl delete deployment " + executor.QuoteArg(req.Name) + gracePeriodFlag(req.GracePeriod)
		resp := s.fallback(ctx, "delete", res.Outcome, cmd, executor.InNamespace(ns))
		if resp.Success {
			s.publish(ctx, events.Deleted, map[string]any{"name": req.Name, "namespace": ns, "source": "command"})
		}
		return resp
	}

	s.publish(ctx, events.Deleted, map[string]any{"name": req.Name, "namespace": ns})
	return Response{Success: true, Message: fmt.Sprintf("Deployment %s scheduled for deletion", req.Name)}
}

// List lists deployments in a namespace, optionally filtered by label selector.
func (s *DeploymentService) List(ctx context.Context, req Request) Response {
	ns := req.namespace()
	if err := validateLabelValue("namespace", ns); err != nil {
		return Failure("%v", err)
	}
	res := call(ctx, &s.base, "list", func(c kubernetes.Interface) (*appsv1.DeploymentList, error) {
		return c.AppsV1().Deployments(ns).List(ctx, metav1.ListOptions{LabelSelector: req.LabelSelector})
	})
	if !res.OK() {
		if !res.Outcome.Fallback() {
			return transportFailure("list", "deployments", "", res.Outcome)
		}
		return s.fallback(ctx, "list", res.Outcome, "kubectl get deployments"+selectorFlag(req.LabelSelector)+" -o json", executor.InNamespace(ns))
	}

	items := make([]DeploymentInfo, 0, len(res.Value.Items))
	for i := range res.Value.Items {
		items = append(items, deploymentInfo(&res.Value.Items[i]))
	}
	return Response{Success: true, Items: items}
}

// Scale sets the replica count with a merge patch on spec.replicas only.
func (s *DeploymentService) Scale(ctx context.Context, name, namespace string, replicas int32) Response {
	if namespace == "" {
		namespace = Request{}.namespace()
	}
	if err := (Request{Name: name, Namespace: namespace}).validateTarget(KindDeployment); err != nil {
		return Failure("%v", err)
	}
	if replicas < 0 {
		return Failure("Scale operation failed: replicas must not be negative")
	}
	patch := []byte(fmt.Sprintf(`{"spec":{"replicas":%d}}`, replicas))

	res := call(ctx, &s.base, "scale", func(c kubernetes.Interface) (*appsv1.Deployment, error) {
		return c.AppsV1().Deployments(namespace).Patch(ctx, name, types.MergePatchType, patch, metav1.PatchOptions{})
	})
	if !res.OK() {
		if !res.Outcome.Fallback() {
			return transportFailure("scale", KindDeployment, name, res.Outcome)
		}
		cmd := fmt.Sprintf("kubectl scale deployment %s --replicas=%d", executor.QuoteArg(name), replicas)
		resp := s.fallback(ctx, "scale", res.Outcome, cmd, executor.InNamespace(namespace))
		if resp.Success {
			s.publish(ctx, events.Scaled, map[string]any{"name": name, "namespace": namespace, "replicas": replicas, "source": "command"})
		}
		return resp
	}

	scaled := deploymentInfo(res.Value)
	s.publish(ctx, events.Scaled, map[string]any{
		"name":      name,
		"namespace": namespace,
		"replicas":  replicas,
		"available": scaled.Available,
	})
	return Response{
		Success:  true,
		Message:  fmt.Sprintf("Deployment %s scaled to %d replicas", name, replicas),
		Resource: scaled,
	}
}

func deploymentPatch(req Request) ([]byte, error) {
	spec := map[string]any{}
	if req.Replicas != nil {
		spec["replicas"] = *req.Replicas
	}
	template := map[string]any{}
	if req.Image != "" {
		template["spec"] = map[string]any{
			"containers": []map[string]any{{"name": req.Name, "image": req.Image}},
		}
	}
	body := map[string]any{}
	if len(req.Labels) > 0 {
		body["metadata"] = map[string]any{"labels": req.Labels}
		template["metadata"] = map[string]any{"labels": req.Labels}
	}
	if len(template) > 0 {
		spec["template"] = template
	}
	if len(spec) > 0 {
		body["spec"] = spec
	}
	return json.Marshal(body)
}

func resourceRequirements(r *ResourceRequirements) (corev1.ResourceRequirements, error) {
	var out corev1.ResourceRequirements
	var err error
	if out.Requests, err = resourceList(r.Requests); err != nil {
		return out, fmt.Errorf("requests: %w", err)
	}
	if out.Limits, err = resourceList(r.Limits); err != nil {
		return out, fmt.Errorf("limits: %w", err)
	}
	return out, nil
}

func resourceList(m map[string]string) (corev1.ResourceList, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make(corev1.ResourceList, len(m))
	for name, value := range m {
		q, err := resource.ParseQuantity(value)
		if err != nil {
			return nil, fmt.Errorf("%s=%q: %w", name, value, err)
		}
		out[corev1.ResourceName(name)] = q
	}
	return out, nil
}
