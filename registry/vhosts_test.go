package registry

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ruteri/ipfs-vhost-gateway/cidutil"
	"github.com/ruteri/ipfs-vhost-gateway/interfaces"
	"github.com/ruteri/ipfs-vhost-gateway/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRecordName = "vhosts-test-key"

func newTestRegistry(t *testing.T, client *storage.MemoryClient) *VhostRegistry {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg, err := New(Config{
		Client:        client,
		PublishedName: testRecordName,
		KeyName:       testRecordName,
		Log:           logger,
	})
	require.NoError(t, err)
	return reg
}

func mintCID(t *testing.T, content string) string {
	t.Helper()
	cid := cidutil.CIDv1RawSHA256([]byte(content))
	require.NotEmpty(t, cid)
	return cid
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	client := storage.NewMemoryClient()
	reg := newTestRegistry(t, client)
	ctx := context.Background()

	cid := mintCID(t, "site-a")
	require.NoError(t, reg.Create(ctx, "hello", cid))

	entry, err := reg.Get(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, interfaces.VhostEntry{Name: "hello", CID: cid}, entry)

	// The durable record must hold the same mapping.
	recordCID, ok := client.Resolve(testRecordName)
	require.True(t, ok, "expected a published name record")
	data, err := client.FetchByPath(ctx, "/ipfs/"+recordCID)
	require.NoError(t, err)

	var durable interfaces.Mapping
	require.NoError(t, json.Unmarshal(data, &durable))
	assert.Equal(t, interfaces.Mapping{"hello": cid}, durable)
}

func TestCreateRejectsReservedNames(t *testing.T) {
	client := storage.NewMemoryClient()
	reg := newTestRegistry(t, client)
	ctx := context.Background()

	cid := mintCID(t, "content")
	for _, name := range []string{"api", "ipfs", "localhost", ""} {
		err := reg.Create(ctx, name, cid)
		assert.ErrorIs(t, err, interfaces.ErrNameReserved, "name %q", name)
	}

	// Nothing may have been published.
	_, ok := client.Resolve(testRecordName)
	assert.False(t, ok)
}

func TestCreateRejectsInvalidCID(t *testing.T) {
	reg := newTestRegistry(t, storage.NewMemoryClient())

	err := reg.Create(context.Background(), "hello", "not-a-cid")
	assert.ErrorIs(t, err, interfaces.ErrInvalidCID)
}

func TestUpdateRequiresExistingVhost(t *testing.T) {
	reg := newTestRegistry(t, storage.NewMemoryClient())
	ctx := context.Background()

	cid := mintCID(t, "v1")
	err := reg.Update(ctx, "missing", cid)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	require.NoError(t, reg.Create(ctx, "site", cid))

	cid2 := mintCID(t, "v2")
	require.NoError(t, reg.Update(ctx, "site", cid2))

	entry, err := reg.Get(ctx, "site")
	require.NoError(t, err)
	assert.Equal(t, cid2, entry.CID)
}

func TestDeleteThenGet(t *testing.T) {
	reg := newTestRegistry(t, storage.NewMemoryClient())
	ctx := context.Background()

	require.NoError(t, reg.Create(ctx, "gone", mintCID(t, "gone")))
	require.NoError(t, reg.Delete(ctx, "gone"))

	_, err := reg.Get(ctx, "gone")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	err = reg.Delete(ctx, "gone")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestListSortedByName(t *testing.T) {
	reg := newTestRegistry(t, storage.NewMemoryClient())
	ctx := context.Background()

	require.NoError(t, reg.Create(ctx, "bravo", mintCID(t, "b")))
	require.NoError(t, reg.Create(ctx, "alpha", mintCID(t, "a")))

	entries := reg.List(ctx)
	require.Len(t, entries, 2)
	assert.Equal(t, "alpha", entries[0].Name)
	assert.Equal(t, "bravo", entries[1].Name)
}

func TestRefreshFailureKeepsStaleSnapshot(t *testing.T) {
	client := storage.NewMemoryClient()
	reg := newTestRegistry(t, client)
	ctx := context.Background()

	cid := mintCID(t, "stale")
	require.NoError(t, reg.Create(ctx, "stale", cid))

	client.FailFetch = errors.New("network partition")

	err := reg.Refresh(ctx)
	require.Error(t, err)
	assert.Equal(t, interfaces.Mapping{"stale": cid}, reg.Snapshot())

	// Reads still serve the last known-good mapping.
	entry, err := reg.Get(ctx, "stale")
	require.NoError(t, err)
	assert.Equal(t, cid, entry.CID)
}

func TestPublishFailurePropagates(t *testing.T) {
	client := storage.NewMemoryClient()
	reg := newTestRegistry(t, client)
	ctx := context.Background()

	client.FailPublish = errors.New("publish refused")

	err := reg.Create(ctx, "hello", mintCID(t, "hello"))
	require.Error(t, err)

	_, ok := client.Resolve(testRecordName)
	assert.False(t, ok, "durable record must be assumed unchanged")
}

func TestWriteAbortsWhenRefreshFails(t *testing.T) {
	client := storage.NewMemoryClient()
	reg := newTestRegistry(t, client)
	ctx := context.Background()

	require.NoError(t, reg.Create(ctx, "keep", mintCID(t, "keep")))

	client.FailFetch = errors.New("network partition")
	err := reg.Create(ctx, "lost", mintCID(t, "lost"))
	require.Error(t, err)

	client.FailFetch = nil
	_, err = reg.Get(ctx, "lost")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestCorruptDurableRecordKeepsSnapshot(t *testing.T) {
	client := storage.NewMemoryClient()
	reg := newTestRegistry(t, client)
	ctx := context.Background()

	cid := mintCID(t, "good")
	require.NoError(t, reg.Create(ctx, "good", cid))

	// Someone publishes garbage over the record.
	badCID, err := client.AddContent(ctx, []byte("{truncated"))
	require.NoError(t, err)
	require.NoError(t, client.PublishName(ctx, badCID, interfaces.PublishOptions{Key: testRecordName}))

	require.Error(t, reg.Refresh(ctx))
	assert.Equal(t, interfaces.Mapping{"good": cid}, reg.Snapshot())
}

func TestBackgroundRefreshSeesExternalPublish(t *testing.T) {
	client := storage.NewMemoryClient()

	writer := newTestRegistry(t, client)
	require.NoError(t, writer.Create(context.Background(), "peer", mintCID(t, "peer")))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reader, err := New(Config{
		Client:          client,
		PublishedName:   testRecordName,
		KeyName:         testRecordName,
		RefreshInterval: 5 * time.Millisecond,
		Log:             logger,
	})
	require.NoError(t, err)

	reader.RunInBackground()
	defer reader.Stop()

	require.Eventually(t, func() bool {
		_, ok := reader.Snapshot()["peer"]
		return ok
	}, time.Second, 5*time.Millisecond)
}
