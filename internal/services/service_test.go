package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/giantswarm/kubectl-mcp/internal/executor"
	"github.com/giantswarm/kubectl-mcp/internal/executor/executortest"
)

type publishedEvent struct {
	resourceType string
	eventType    string
	data         map[string]any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) NotifyResourceChange(_ context.Context, resourceType, eventType string, data map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{resourceType: resourceType, eventType: eventType, data: data})
}

func (p *fakePublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

type fakeRecorder struct {
	mu        sync.Mutex
	outcomes  []string
	fallbacks []string
}

func (r *fakeRecorder) RecordK8sOperation(operation, resourceType, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, operation+"/"+resourceType+"/"+outcome)
}

func (r *fakeRecorder) RecordFallback(operation, resourceType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks = append(r.fallbacks, operation+"/"+resourceType)
}

type fixture struct {
	client    *fake.Clientset
	commander *executortest.MockCommander
	publisher *fakePublisher
	recorder  *fakeRecorder
}

func newFixture(objects ...runtime.Object) *fixture {
	return &fixture{
		client:    fake.NewSimpleClientset(objects...),
		commander: &executortest.MockCommander{},
		publisher: &fakePublisher{},
		recorder:  &fakeRecorder{},
	}
}

func (f *fixture) deps() Deps {
	return Deps{
		Client:   f.client,
		Executor: f.commander,
		Events:   f.publisher,
		Recorder: f.recorder,
	}
}

// offline returns deps without a typed client.
func (f *fixture) offline() Deps {
	d := f.deps()
	d.Client = nil
	return d
}

func (f *fixture) rejectWith(verb, resource string, err error) {
	f.client.PrependReactor(verb, resource, func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, err
	})
}

func forbidden(resource, name string) error {
	return apierrors.NewForbidden(schema.GroupResource{Resource: resource}, name, errors.New("access denied"))
}

var errConnectionRefused = errors.New("dial tcp 10.0.0.1:6443: connect: connection refused")

func ns(namespace string) executor.CallOptions {
	return executor.CallOptions{Namespace: namespace}
}

func TestRequestNamespaceDefaults(t *testing.T) {
	assert.Equal(t, "default", Request{}.namespace())
	assert.Equal(t, "dev", Request{Namespace: "dev"}.namespace())
}

func TestFromCommand(t *testing.T) {
	res := executor.Failed("kubectl get pods", "boom")
	resp := FromCommand(res)

	assert.False(t, resp.Success)
	assert.Equal(t, "boom", resp.Error)
	assert.Equal(t, "kubectl get pods", resp.Command)
	assert.Equal(t, res, resp.CommandResult())
}

func TestTransportFailureRedactsAddresses(t *testing.T) {
	f := newFixture()
	f.rejectWith("get", "pods", errConnectionRefused)

	resp := NewPodService(f.deps()).Get(context.Background(), Request{Name: "web"})

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "failed to get pod web")
	assert.NotContains(t, resp.Error, "10.0.0.1")
	assert.Empty(t, resp.APIError)
	f.commander.AssertNumberOfCalls(t, "Execute", 0)
}

func TestSortedPairs(t *testing.T) {
	assert.Equal(t, []string{"a=1", "b=2", "c=3"}, sortedPairs(map[string]string{"c": "3", "a": "1", "b": "2"}))
	assert.Empty(t, sortedPairs(nil))
}

func TestSelectorFlag(t *testing.T) {
	assert.Equal(t, "", selectorFlag(""))
	assert.Equal(t, " -l app=web", selectorFlag("app=web"))
	assert.Equal(t, " -l 'tier in (a,b)'", selectorFlag("tier in (a,b)"))
}
