package file_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/robotwatch/pkg/file"
	"github.com/dmitrymomot/robotwatch/pkg/robots"
)

const oneRobot = `{"robots":[{"id":1,"name":"ExampleBot","reputation":"ok","ips":[["203.0.113.5"]]}]}`
const twoRobots = `{"robots":[{"id":1,"reputation":"ok"},{"id":2,"reputation":"bad"}]}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLocalSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robots.json")
	writeFile(t, path, oneRobot)

	src, err := file.NewLocalSource(path)
	require.NoError(t, err)
	assert.Equal(t, path, src.Name())

	obj, err := src.Open(context.Background(), "")
	require.NoError(t, err)
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	require.NoError(t, obj.Body.Close())
	assert.Equal(t, oneRobot, string(data))
	assert.Equal(t, int64(len(oneRobot)), obj.Size)
	assert.NotEmpty(t, obj.Version)

	_, err = src.Open(context.Background(), obj.Version)
	assert.ErrorIs(t, err, file.ErrNotModified)

	writeFile(t, path, twoRobots)
	changed, err := src.Open(context.Background(), obj.Version)
	require.NoError(t, err)
	defer changed.Body.Close()
	assert.NotEqual(t, obj.Version, changed.Version)
}

func TestLocalSource_Errors(t *testing.T) {
	_, err := file.NewLocalSource("")
	assert.ErrorIs(t, err, file.ErrInvalidPath)

	missing, err := file.NewLocalSource(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	_, err = missing.Open(context.Background(), "")
	assert.ErrorIs(t, err, file.ErrFileNotFound)

	dir, err := file.NewLocalSource(t.TempDir())
	require.NoError(t, err)
	_, err = dir.Open(context.Background(), "")
	assert.ErrorIs(t, err, file.ErrIsDirectory)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = dir.Open(ctx, "")
	assert.ErrorIs(t, err, file.ErrOperationCanceled)
}

func TestLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robots.json")
	writeFile(t, path, oneRobot)
	src, err := file.NewLocalSource(path)
	require.NoError(t, err)

	load := file.Loader(src, nil)
	store := robots.NewStore(nil)

	require.NoError(t, store.Reload(context.Background(), load))
	first := store.Database()
	require.NotNil(t, first)
	assert.Equal(t, 1, first.Stats().Robots)

	require.NoError(t, store.Reload(context.Background(), load))
	assert.Same(t, first, store.Database(), "unchanged file keeps the snapshot")

	writeFile(t, path, twoRobots)
	require.NoError(t, store.Reload(context.Background(), load))
	assert.Equal(t, 2, store.Database().Stats().Robots)

	writeFile(t, path, `{"robots":`)
	err = store.Reload(context.Background(), load)
	assert.ErrorIs(t, err, robots.ErrDatabaseLoad)
	assert.Equal(t, 2, store.Database().Stats().Robots)
}

func TestLoader_YAMLByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robots.yaml")
	writeFile(t, path, "robots:\n  - id: 3\n    reputation: nice\n")
	src, err := file.NewLocalSource(path)
	require.NoError(t, err)

	db, err := file.Loader(src, nil)(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, db.Robots()[0].ID)
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		in          string
		bucket, key string
		ok          bool
	}{
		{"s3://bucket/robots.json", "bucket", "robots.json", true},
		{"s3://bucket/nested/path/robots.yml", "bucket", "nested/path/robots.yml", true},
		{"s3://bucket", "", "", false},
		{"s3:///key", "", "", false},
		{"/var/lib/robots.json", "", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			bucket, key, ok := file.ParseS3URL(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.bucket, bucket)
			assert.Equal(t, tc.key, key)
		})
	}
}

func TestNewSource_Local(t *testing.T) {
	src, err := file.NewSource(context.Background(), "robots.json", file.S3Config{})
	require.NoError(t, err)
	_, ok := src.(*file.LocalSource)
	assert.True(t, ok)
}
