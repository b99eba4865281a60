package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	march := time.Date(2026, time.March, 9, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		preset  string
		id      string
		version int
		want    string
	}{
		{
			name:    "preset path",
			preset:  "og-image",
			id:      "abc123",
			version: 1,
			want:    "thumbnails/og-image/2026/03/abc123-v1.png",
		},
		{
			name:    "empty preset becomes custom",
			preset:  "",
			id:      "abc123",
			version: 3,
			want:    "thumbnails/custom/2026/03/abc123-v3.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectKey(tt.preset, tt.id, tt.version, march))
		})
	}
}

func TestObjectKeyZeroPadsMonth(t *testing.T) {
	december := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "thumbnails/youtube/2025/12/id-v2.png", ObjectKey("youtube", "id", 2, december))
}

func TestStorageError(t *testing.T) {
	cause := errors.New("connection reset")
	err := &Error{Op: "put", Key: "thumbnails/custom/2026/03/x-v1.png", Cause: cause}

	assert.Contains(t, err.Error(), "put")
	assert.Contains(t, err.Error(), "x-v1.png")
	assert.ErrorIs(t, err, cause)
}
