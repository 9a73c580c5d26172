package k8s

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

func TestClassify(t *testing.T) {
	podsGR := schema.GroupResource{Resource: "pods"}

	tests := []struct {
		name     string
		err      error
		kind     Kind
		message  string
		fallback bool
		notFound bool
	}{
		{name: "nil", err: nil, kind: OK},
		{
			name:     "not found",
			err:      apierrors.NewNotFound(podsGR, "web"),
			kind:     APIFailure,
			message:  `pods "web" not found`,
			fallback: true,
			notFound: true,
		},
		{
			name:     "forbidden",
			err:      apierrors.NewForbidden(podsGR, "web", errors.New("no access")),
			kind:     APIFailure,
			message:  `pods "web" is forbidden: no access`,
			fallback: true,
		},
		{
			name:     "wrapped api error",
			err:      fmt.Errorf("create: %w", apierrors.NewAlreadyExists(podsGR, "web")),
			kind:     APIFailure,
			message:  `pods "web" already exists`,
			fallback: true,
		},
		{
			name:    "transport",
			err:     errors.New("dial tcp 10.0.0.1:6443: connect: connection refused"),
			kind:    TransportFailure,
			message: "dial tcp 10.0.0.1:6443: connect: connection refused",
		},
		{
			name:     "unavailable",
			err:      ErrUnavailable,
			kind:     Unavailable,
			message:  ErrUnavailable.Error(),
			fallback: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Classify(tt.err)
			assert.Equal(t, tt.kind, o.Kind)
			assert.Equal(t, tt.message, o.Message)
			assert.Equal(t, tt.fallback, o.Fallback())
			assert.Equal(t, tt.notFound, o.NotFound())
		})
	}
}

func TestClassifyKeepsStatusDetails(t *testing.T) {
	o := Classify(apierrors.NewNotFound(schema.GroupResource{Resource: "pods"}, "web"))
	assert.Equal(t, metav1.StatusReasonNotFound, o.Reason)
	assert.Equal(t, int32(404), o.Code)
}

func TestDo(t *testing.T) {
	ok := Do(func() (int, error) { return 42, nil })
	assert.True(t, ok.OK())
	assert.Equal(t, 42, ok.Value)

	failed := Do(func() (int, error) { return 7, errors.New("boom") })
	assert.False(t, failed.OK())
	assert.Equal(t, 0, failed.Value)
	assert.Equal(t, TransportFailure, failed.Outcome.Kind)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "ok", OK.String())
	assert.Equal(t, "api_error", APIFailure.String())
	assert.Equal(t, "transport_error", TransportFailure.String())
	assert.Equal(t, "unavailable", Unavailable.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
