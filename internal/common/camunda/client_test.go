package camunda

import (
	"fmt"
	"testing"

	"nba-query-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantRetryable bool
	}{
		{"unavailable", fmt.Errorf("rpc error: code = Unavailable desc = connection refused"), true},
		{"deadline", fmt.Errorf("context deadline exceeded"), true},
		{"permission", fmt.Errorf("rpc error: code = PermissionDenied"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapZeebeError(tt.err, "topology")
			stdErr := errors.AsStandardError(err)
			require.NotNil(t, stdErr)
			assert.Equal(t, errors.ErrCodeBrokerUnavailable, stdErr.Code)
			assert.Equal(t, tt.wantRetryable, stdErr.Retryable)
			assert.Contains(t, stdErr.Message, "topology")
		})
	}
}
