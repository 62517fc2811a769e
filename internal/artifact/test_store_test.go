package artifact

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_WriteCreatesParents(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root)
	ctx := context.Background()

	abs := filepath.Join(root, "x", "y", "z.lua")
	require.NoError(t, s.Write(ctx, abs, []byte("return 1")))
	// Idempotent on existing directories and overwrites content.
	require.NoError(t, s.Write(ctx, abs, []byte("return 2")))
	b, err := os.ReadFile(abs)
	require.NoError(t, err)
	assert.Equal(t, "return 2", string(b))

	require.NoError(t, s.Write(ctx, "rel/a.lua", []byte("a")))
	b, err = os.ReadFile(filepath.Join(root, "rel", "a.lua"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(b))
}

func TestFileStore_RejectsOutsideRoot(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root)
	ctx := context.Background()
	assert.Error(t, s.Write(ctx, "../escape.lua", nil))
	assert.Error(t, s.Write(ctx, filepath.Join(filepath.Dir(root), "other.lua"), nil))
	assert.Error(t, s.Write(ctx, "", nil))
	assert.Error(t, NewFileStore("").Write(ctx, "a", nil))
}

func TestFileStore_WriteErrorIsWrapped(t *testing.T) {
	root := t.TempDir()
	// A file where a directory is needed.
	require.NoError(t, os.WriteFile(filepath.Join(root, "x"), nil, 0o644))
	err := NewFileStore(root).Write(context.Background(), "x/y.lua", []byte("1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write ")
}

type fakeObjects struct {
	exists   bool
	made     []string
	puts     map[string]string
	putErr   error
	checkErr error
}

func (f *fakeObjects) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.exists, f.checkErr
}

func (f *fakeObjects) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.made = append(f.made, bucket)
	f.exists = true
	return nil
}

func (f *fakeObjects) PutObject(_ context.Context, bucket, object string, r io.Reader, size int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	b, _ := io.ReadAll(r)
	if f.puts == nil {
		f.puts = map[string]string{}
	}
	f.puts[bucket+"/"+object] = string(b)
	return minio.UploadInfo{Bucket: bucket, Key: object, Size: size}, nil
}

func TestS3Store_WriteCreatesBucketOnceAndPrefixesKeys(t *testing.T) {
	fake := &fakeObjects{}
	s := newS3Store(fake, "artifacts", "us-east-1", "/builds/main/")
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "x/y.lua", []byte("y")))
	require.NoError(t, s.Write(ctx, "/z.lua", []byte("z")))

	assert.Equal(t, []string{"artifacts"}, fake.made)
	assert.Equal(t, map[string]string{
		"artifacts/builds/main/x/y.lua": "y",
		"artifacts/builds/main/z.lua":   "z",
	}, fake.puts)
}

func TestS3Store_Errors(t *testing.T) {
	ctx := context.Background()
	s := newS3Store(&fakeObjects{exists: true, putErr: errors.New("denied")}, "b", "r", "")
	err := s.Write(ctx, "a.lua", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://b/a.lua")

	s = newS3Store(&fakeObjects{checkErr: errors.New("offline")}, "b", "r", "")
	assert.Error(t, s.Write(ctx, "a.lua", nil))
	assert.Error(t, s.Write(ctx, " ", nil))
}

func TestS3Store_ObjectKey(t *testing.T) {
	s := newS3Store(&fakeObjects{}, "b", "r", "")
	assert.Equal(t, "x/y.lua", s.ObjectKey("x/y.lua"))
	assert.Equal(t, "y.lua", s.ObjectKey("../y.lua"))
}

func TestNewS3Store_Validation(t *testing.T) {
	_, err := NewS3Store(S3Config{})
	assert.Error(t, err)
	_, err = NewS3Store(S3Config{Endpoint: "localhost:9000"})
	assert.Error(t, err)
	_, err = NewS3Store(S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	assert.Error(t, err)

	s, err := NewS3Store(S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "c", Prefix: "p"})
	require.NoError(t, err)
	assert.Equal(t, "p/k.lua", s.ObjectKey("k.lua"))
}
