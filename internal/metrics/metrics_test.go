package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/phrazzld/deckmind/internal/generation"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGenerativeOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeSuccess},
		{fmt.Errorf("wrapped: %w", generation.ErrContentBlocked), OutcomeBlocked},
		{generation.ErrEmptyResponse, OutcomeEmpty},
		{generation.ErrRequestRejected, OutcomeRejected},
		{fmt.Errorf("%w: %w", generation.ErrTransientFailure, context.Canceled), OutcomeTransient},
		{generation.ErrTransport, OutcomeTransport},
		{errors.New("boom"), OutcomeError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GenerativeOutcome(tt.err))
	}
}

func TestObserveGenerativeCall(t *testing.T) {
	before := testutil.ToFloat64(GenerativeCalls.WithLabelValues("test-provider", OutcomeBlocked))
	ObserveGenerativeCall("test-provider", time.Now(), generation.ErrContentBlocked)
	after := testutil.ToFloat64(GenerativeCalls.WithLabelValues("test-provider", OutcomeBlocked))
	assert.Equal(t, before+1, after)
}

func TestObserveTask(t *testing.T) {
	before := testutil.ToFloat64(TaskExecutions.WithLabelValues("test-task", OutcomeError))
	ObserveTask("test-task", errors.New("failed"))
	ObserveTask("test-task", nil)
	assert.Equal(t, before+1, testutil.ToFloat64(TaskExecutions.WithLabelValues("test-task", OutcomeError)))
	assert.Equal(t, float64(1), testutil.ToFloat64(TaskExecutions.WithLabelValues("test-task", OutcomeSuccess)))
}
