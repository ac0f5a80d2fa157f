package session

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/leapstack-labs/asksql/internal/store"
	"github.com/leapstack-labs/asksql/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSecret_CreatedOnceAndReused(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	first, persisted, err := LoadSecret(ctx, s, testutil.NewTestLogger(t))
	require.NoError(t, err)
	assert.True(t, persisted)
	key, err := hex.DecodeString(first)
	require.NoError(t, err)
	assert.Len(t, key, secretKeyLength)

	second, persisted, err := LoadSecret(ctx, s, nil)
	require.NoError(t, err)
	assert.True(t, persisted)
	assert.Equal(t, first, second)

	stored, err := s.Get(ctx, store.KeySessionSecret)
	require.NoError(t, err)
	assert.Equal(t, first, stored)
}

func TestLoadSecret_FallsBackToMemory(t *testing.T) {
	tests := []struct {
		name  string
		store store.Store
	}{
		{name: "read failure", store: brokenStore{getErr: errors.New("disk gone")}},
		{name: "write failure", store: brokenStore{getErr: store.ErrNotFound, setErr: errors.New("read-only")}},
		{name: "no store", store: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewRecordingLogger()
			secret, persisted, err := LoadSecret(context.Background(), tt.store, logger)

			require.NoError(t, err)
			assert.NotEmpty(t, secret)
			assert.False(t, persisted)
			if tt.store != nil {
				assert.True(t, logs.Contains("in-memory"))
			}
		})
	}
}
