package storage

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	d := NewLocalDisk(t.TempDir())

	require.NoError(t, d.Put(ctx, "catalog/front.jpg", []byte("jpeg")))
	assert.True(t, d.Exists(ctx, "catalog/front.jpg"))

	size, err := d.Size(ctx, "catalog/front.jpg")
	require.NoError(t, err)
	assert.EqualValues(t, 4, size)

	files, err := d.Files(ctx, "catalog")
	require.NoError(t, err)
	assert.Equal(t, []string{"catalog/front.jpg"}, files)

	require.NoError(t, d.Delete(ctx, "catalog/front.jpg"))
	require.NoError(t, d.Delete(ctx, "catalog/front.jpg"))
	assert.False(t, d.Exists(ctx, "catalog/front.jpg"))
}

func TestOpenResolvesDiskPrefix(t *testing.T) {
	ctx := context.Background()
	d := NewLocalDisk(t.TempDir())
	require.NoError(t, d.Put(ctx, "imgs/a.png", []byte("png")))
	RegisterDisk("local", d)

	for _, ref := range []string{"local:imgs/a.png", "imgs/a.png"} {
		rc, name, err := Open(ctx, ref)
		require.NoError(t, err, ref)
		body, _ := io.ReadAll(rc)
		rc.Close()
		assert.Equal(t, "a.png", name)
		assert.Equal(t, "png", string(body))
	}
}

func TestOpenUnconfiguredS3(t *testing.T) {
	_, _, err := Open(context.Background(), "s3:imgs/a.png")
	assert.Error(t, err)
}

func TestPutLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	d := NewLocalDisk(t.TempDir())

	require.NoError(t, d.Put(ctx, "catalog/a.jpg", []byte("one")))
	require.NoError(t, d.Put(ctx, "catalog/a.jpg", []byte("two")))

	files, err := d.Files(ctx, "catalog")
	require.NoError(t, err)
	assert.Equal(t, []string{"catalog/a.jpg"}, files)

	body, err := d.Get(ctx, "catalog/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "two", string(body))
}
