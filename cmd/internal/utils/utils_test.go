package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatEpochIsUTCRFC3339(t *testing.T) {
	millis := time.Date(2026, 2, 24, 14, 30, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, "2026-02-24T14:30:00Z", FormatEpoch(millis))
}

func TestFromEpochNormalizesOffsets(t *testing.T) {
	millis, err := FromEpoch("2026-02-24T15:30:00+01:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 24, 14, 30, 0, 0, time.UTC).UnixMilli(), millis)

	_, err = FromEpoch("not a timestamp")
	assert.Error(t, err)
}

func TestSanitizeTrimsStringFields(t *testing.T) {
	type form struct {
		Name string
		Tags []string
		Age  int
	}

	f := &form{Name: "  ana ", Tags: []string{" a", "b "}, Age: 3}
	Sanitize(f)

	assert.Equal(t, "ana", f.Name)
	assert.Equal(t, []string{"a", "b"}, f.Tags)
	assert.Equal(t, 3, f.Age)
}
