package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "arxiv-digest-api/pkg/errors"
)

type timeoutNetError struct{}

func (timeoutNetError) Error() string   { return "i/o wait" }
func (timeoutNetError) Timeout() bool   { return true }
func (timeoutNetError) Temporary() bool { return true }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperrors.ErrorCode
	}{
		{"deadline exceeded", context.DeadlineExceeded, apperrors.CodeLLMTimeout},
		{"wrapped deadline", fmt.Errorf("call failed: %w", context.DeadlineExceeded), apperrors.CodeLLMTimeout},
		{"net timeout", timeoutNetError{}, apperrors.CodeLLMTimeout},
		{"timeout in message", errors.New("request timeout after 120s"), apperrors.CodeLLMTimeout},
		{"connection refused", errors.New("dial tcp 10.0.0.1:443: connection refused"), apperrors.CodeLLMConnectionFailed},
		{"unknown host", errors.New("lookup api.example.com: no such host"), apperrors.CodeLLMConnectionFailed},
		{"connection reset", errors.New("read: connection reset by peer"), apperrors.CodeLLMConnectionFailed},
		{"api error", errors.New("status 400: invalid request body"), apperrors.CodeLLMProtocolError},
		{"empty body", errors.New("unexpected end of JSON input"), apperrors.CodeLLMProtocolError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			assert.Equal(t, tt.want, got.Code)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassifyErrorNil(t *testing.T) {
	assert.Nil(t, classifyError(nil))
}
