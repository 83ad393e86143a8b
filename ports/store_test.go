package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/siwa/core"
)

// mapNonceStore is a minimal NonceReadWriter without atomic consumption.
type mapNonceStore struct {
	data   map[string]*core.NonceRecord
	getErr error
}

func (s *mapNonceStore) Get(ctx context.Context, nonce string) (*core.NonceRecord, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.data[nonce], nil
}

func (s *mapNonceStore) Set(ctx context.Context, nonce string, record *core.NonceRecord) error {
	s.data[nonce] = record
	return nil
}

func (s *mapNonceStore) Delete(ctx context.Context, nonce string) error {
	delete(s.data, nonce)
	return nil
}

func TestFallbackNonceStoreConsume(t *testing.T) {
	base := &mapNonceStore{data: make(map[string]*core.NonceRecord)}
	store := FallbackNonceStore{base}
	ctx := context.Background()

	record := &core.NonceRecord{PublicKey: "pk", ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, store.Set(ctx, "n1", record))

	got, err := store.Consume(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, record, got)

	got, err = store.Consume(ctx, "n1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFallbackNonceStorePropagatesErrors(t *testing.T) {
	base := &mapNonceStore{
		data:   make(map[string]*core.NonceRecord),
		getErr: errors.New("backend down"),
	}
	store := FallbackNonceStore{base}

	_, err := store.Consume(context.Background(), "n1")
	assert.Error(t, err)
}
