package utils

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundtrip(t *testing.T) {
	ts := time.Date(2026, 8, 29, 10, 30, 0, 123456789, time.UTC)
	id := uuid.New()

	cursor := EncodeCursor(ts, id)
	require.NotEmpty(t, cursor)

	gotTime, gotID, err := DecodeCursor(cursor)

	require.NoError(t, err)
	assert.True(t, ts.Equal(gotTime))
	assert.Equal(t, id, gotID)
}

func TestEncodeCursorNilID(t *testing.T) {
	assert.Empty(t, EncodeCursor(time.Now(), uuid.Nil))
}

func TestDecodeCursorEmpty(t *testing.T) {
	gotTime, gotID, err := DecodeCursor("")

	require.NoError(t, err)
	assert.True(t, gotTime.IsZero())
	assert.Equal(t, uuid.Nil, gotID)
}

func TestDecodeCursorInvalid(t *testing.T) {
	testCases := []struct {
		name   string
		cursor string
	}{
		{name: "Not base64", cursor: "%%%"},
		{name: "No separator", cursor: base64.URLEncoding.EncodeToString([]byte("1234567890"))},
		{name: "Bad timestamp", cursor: base64.URLEncoding.EncodeToString([]byte("abc_" + uuid.NewString()))},
		{name: "Bad uuid", cursor: base64.URLEncoding.EncodeToString([]byte("1234567890_not-a-uuid"))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := DecodeCursor(tc.cursor)
			assert.Error(t, err)
		})
	}
}
