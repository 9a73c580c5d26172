package services

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/client-go/kubernetes"

	"github.com/giantswarm/kubectl-mcp/internal/events"
	"github.com/giantswarm/kubectl-mcp/internal/executor"
	"github.com/giantswarm/kubectl-mcp/internal/k8s"
	"github.com/giantswarm/kubectl-mcp/internal/logging"
)

// Resource kinds.
const (
	KindPod        = "pod"
	KindDeployment = "deployment"
	KindNamespace  = "namespace"
	KindCluster    = "cluster"
)

// Commander runs a textual command.
type Commander interface {
	Execute(ctx context.Context, command string, opts ...executor.CallOption) executor.Result
}

// Recorder receives typed-call measurements. It is satisfied by
// *instrumentation.Metrics.
type Recorder interface {
	RecordK8sOperation(operation, resourceType, outcome string, duration time.Duration)
	RecordFallback(operation, resourceType string)
}

// Deps are the collaborators shared by all services. Client may be nil, in
// which case every operation takes the command path.
type Deps struct {
	Client   kubernetes.Interface
	Executor Commander
	Events   events.Publisher
	Logger   *slog.Logger
	Recorder Recorder

	// PortForwardTimeout bounds port-forwarding sessions. Zero means
	// executor.PortForwardTimeout.
	PortForwardTimeout time.Duration
}

// ResourceService is the capability set every resource kind implements.
type ResourceService interface {
	Kind() string
	Create(ctx context.Context, req Request) Response
	Get(ctx context.Context, req Request) Response
	Update(ctx context.Context, req Request) Response
	Delete(ctx context.Context, req Request) Response
	List(ctx context.Context, req Request) Response
}

// ResourceRequirements are container requests and limits, e.g. {"cpu": "100m"}.
type ResourceRequirements struct {
	Requests map[string]string `json:"requests,omitempty"`
	Limits   map[string]string `json:"limits,omitempty"`
}

// Request carries the parameters of any resource operation. Each operation
// reads the fields it needs.
type Request struct {
	Name          string
	Namespace     string
	Image         string
	Replicas      *int32
	Labels        map[string]string
	Env           map[string]string
	ContainerPort int32
	Resources     *ResourceRequirements
	LabelSelector string
	GracePeriod   *int64
	Force         bool
	Timeout       time.Duration
	OutputFormat  string
}

func (r Request) namespace() string {
	if r.Namespace == "" {
		return k8s.DefaultNamespace
	}
	return r.Namespace
}

// validateTarget checks the object name and the effective namespace. Names
// end up in fallback command lines, so anything that could be read as a flag
// or split into extra arguments is refused before the first call.
func (r Request) validateTarget(kind string) error {
	if err := ValidateObjectName(kind, r.Name); err != nil {
		return err
	}
	return validateLabelValue("namespace", r.namespace())
}

// ValidateObjectName rejects names that are not DNS-1123 subdomains.
func ValidateObjectName(kind, name string) error {
	if errs := validation.IsDNS1123Subdomain(name); len(errs) > 0 {
		return fmt.Errorf("invalid %s name %q: %s", kind, name, strings.Join(errs, "; "))
	}
	return nil
}

// validateLabelValue rejects values that are not DNS-1123 labels, the rule
// for namespace and container names.
func validateLabelValue(what, value string) error {
	if errs := validation.IsDNS1123Label(value); len(errs) > 0 {
		return fmt.Errorf("invalid %s name %q: %s", what, value, strings.Join(errs, "; "))
	}
	return nil
}

// Response is the uniform result of a service operation. When the command
// path was taken, Command, Output and Error mirror the executor result.
type Response struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
	APIError string `json:"api_error,omitempty"`
	Resource any    `json:"resource,omitempty"`
	Items    any    `json:"items,omitempty"`
	Command  string `json:"command,omitempty"`
	Output   string `json:"output,omitempty"`
}

// CommandResult returns the executor view of a command-path response.
func (r Response) CommandResult() executor.Result {
	return executor.Result{Command: r.Command, Output: r.Output, Error: r.Error, Success: r.Success}
}

// FromCommand converts an executor result into a Response.
func FromCommand(res executor.Result) Response {
	return Response{
		Success: res.Success,
		Error:   res.Error,
		Command: res.Command,
		Output:  res.Output,
	}
}

// Failure returns a failed Response.
func Failure(format string, args ...any) Response {
	return Response{Error: fmt.Sprintf(format, args...)}
}

// base holds the plumbing shared by the resource services.
type base struct {
	kind     string
	client   kubernetes.Interface
	exec     Commander
	events   events.Publisher
	logger   *slog.Logger
	recorder Recorder
}

func newBase(kind string, deps Deps) base {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return base{
		kind:     kind,
		client:   deps.Client,
		exec:     deps.Executor,
		events:   deps.Events,
		logger:   logger.With(logging.ResourceType(kind)),
		recorder: deps.Recorder,
	}
}

// Kind implements ResourceService.
func (b *base) Kind() string {
	return b.kind
}

// call runs fn against the typed client and tags the outcome.
func call[T any](ctx context.Context, b *base, operation string, fn func(kubernetes.Interface) (T, error)) k8s.Result[T] {
	if b.client == nil {
		return k8s.Result[T]{Outcome: k8s.Classify(k8s.ErrUnavailable)}
	}

	start := time.Now()
	res := k8s.Do(func() (T, error) { return fn(b.client) })
	elapsed := time.Since(start)

	if b.recorder != nil {
		b.recorder.RecordK8sOperation(operation, b.kind, res.Outcome.Kind.String(), elapsed)
	}
	if !res.OK() {
		b.logger.Warn("typed call failed",
			logging.Operation(operation),
			slog.String("outcome", res.Outcome.Kind.String()),
			logging.SanitizedErr(res.Outcome.Err))
	}
	return res
}

// fallback runs the textual equivalent of a failed typed call.
func (b *base) fallback(ctx context.Context, operation string, outcome k8s.Outcome, command string, opts ...executor.CallOption) Response {
	b.logger.Info("falling back to command",
		logging.Operation(operation),
		logging.Command(command))
	if b.recorder != nil {
		b.recorder.RecordFallback(operation, b.kind)
	}

	resp := FromCommand(b.exec.Execute(ctx, command, opts...))
	if outcome.Kind == k8s.APIFailure {
		resp.APIError = "K8s API error: " + outcome.Message
	}
	return resp
}

func (b *base) publish(ctx context.Context, eventType string, data map[string]any) {
	if b.events == nil {
		return
	}
	b.events.NotifyResourceChange(ctx, b.kind, eventType, data)
}

// transportFailure reports a failed typed call that cannot fall back.
func transportFailure(operation, kind, name string, outcome k8s.Outcome) Response {
	target := kind
	if name != "" {
		target += " " + name
	}
	return Failure("failed to %s %s: %s", operation, target, logging.SanitizeHost(outcome.Message))
}

// sortedPairs renders m as k=v pairs in key order.
func sortedPairs(m map[string]string) []string {
	keys := slices.Sorted(maps.Keys(m))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+m[k])
	}
	return out
}

func selectorFlag(selector string) string {
	if selector == "" {
		return ""
	}
	return " -l " + executor.QuoteArg(selector)
}

func joinArgs(args ...string) string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a != "" {
			out = append(out, a)
		}
	}
	return strings.Join(out, " ")
}
