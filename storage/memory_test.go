package storage

import (
	"context"
	"testing"

	"github.com/ruteri/ipfs-vhost-gateway/cidutil"
	"github.com/ruteri/ipfs-vhost-gateway/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClient_ContentRoundTrip(t *testing.T) {
	client := NewMemoryClient()
	ctx := context.Background()

	data := []byte(`{"hello":"bafy..."}`)
	cid, err := client.AddContent(ctx, data)
	require.NoError(t, err)
	assert.True(t, cidutil.IsValid(cid), "memory client must mint real CIDs")

	got, err := client.FetchByPath(ctx, "/ipfs/"+cid)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestMemoryClient_NameRecords(t *testing.T) {
	client := NewMemoryClient()
	ctx := context.Background()

	_, err := client.FetchByPath(ctx, "/ipns/unpublished")
	assert.ErrorIs(t, err, interfaces.ErrContentNotFound)

	data := []byte(`{}`)
	cid, err := client.AddContent(ctx, data)
	require.NoError(t, err)
	require.NoError(t, client.PublishName(ctx, cid, interfaces.PublishOptions{Key: "rec"}))

	got, err := client.FetchByPath(ctx, "/ipns/rec")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	resolved, ok := client.Resolve("rec")
	require.True(t, ok)
	assert.Equal(t, cid, resolved)
}

func TestMemoryClient_Unavailable(t *testing.T) {
	client := NewMemoryClient()
	client.Down = true
	ctx := context.Background()

	assert.False(t, client.Available(ctx))

	_, err := client.FetchByPath(ctx, "/ipns/rec")
	assert.ErrorIs(t, err, interfaces.ErrBackendUnavailable)

	_, err = client.AddContent(ctx, []byte("x"))
	assert.ErrorIs(t, err, interfaces.ErrBackendUnavailable)

	err = client.PublishName(ctx, "cid", interfaces.PublishOptions{Key: "rec"})
	assert.ErrorIs(t, err, interfaces.ErrBackendUnavailable)
}
