package providers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "with status code",
			err:  &APIError{Provider: "BFL", StatusCode: 422, Status: "Unprocessable Entity", Body: "bad prompt"},
			want: "BFL error (HTTP 422 Unprocessable Entity): bad prompt",
		},
		{
			name: "without status code",
			err:  &APIError{Provider: "BFL", Body: "task failed"},
			want: "BFL error: task failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorsAsRoundTrips(t *testing.T) {
	wrapped := fmt.Errorf("pipeline: %w", &CapacityError{Max: 24})

	var capErr *CapacityError
	require.True(t, errors.As(wrapped, &capErr))
	assert.Equal(t, 24, capErr.Max)

	var modErr *ModerationError
	assert.False(t, errors.As(wrapped, &modErr))
}

func TestModerationErrorKinds(t *testing.T) {
	err := &ModerationError{TaskID: "task-1", Kind: ModerationContent}
	assert.Contains(t, err.Error(), "task-1")
	assert.Contains(t, err.Error(), ModerationContent)
}

func TestDownloadErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &DownloadError{URL: "https://cdn.example/img.png", Cause: cause}
	assert.ErrorIs(t, err, cause)
}

func TestTimeoutErrorMessage(t *testing.T) {
	err := &TimeoutError{TaskID: "task-9", Attempts: 60}
	assert.Contains(t, err.Error(), "task-9")
	assert.Contains(t, err.Error(), "60")
}
