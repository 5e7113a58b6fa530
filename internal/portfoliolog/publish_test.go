package portfoliolog

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/backgrid/internal/testutil"
)

type fakeUploader struct {
	objects map[string][]byte
	types   map[string]string
	failOn  string
}

func (f *fakeUploader) Upload(_ context.Context, in *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	key := aws.ToString(in.Key)
	if key == f.failOn {
		return nil, errors.New("access denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+key] = body
	f.types[key] = aws.ToString(in.ContentType)
	return &manager.UploadOutput{Key: in.Key}, nil
}

func TestPublisher_Publish(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{
		"run-1/meta.msgpack":  "m",
		"run-1/stats.msgpack": "s",
		"run-1/notes.txt":     "n",
		"run-1/nested/x.bin":  "ignored",
	})
	up := &fakeUploader{objects: map[string][]byte{}, types: map[string]string{}}

	keys, err := NewPublisher(up, "bucket", "backtests").Publish(context.Background(), filepath.Join(root, "run-1"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"backtests/run-1/meta.msgpack",
		"backtests/run-1/notes.txt",
		"backtests/run-1/stats.msgpack",
	}, keys)
	assert.Equal(t, []byte("s"), up.objects["bucket/backtests/run-1/stats.msgpack"])
	assert.Contains(t, up.types["backtests/run-1/notes.txt"], "text/plain")
}

func TestPublisher_UploadFailure(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{
		"r/a.msgpack": "a",
		"r/b.msgpack": "b",
	})
	up := &fakeUploader{objects: map[string][]byte{}, types: map[string]string{}, failOn: "r/b.msgpack"}

	keys, err := NewPublisher(up, "bucket", "").Publish(context.Background(), filepath.Join(root, "r"))
	assert.ErrorContains(t, err, "access denied")
	assert.Equal(t, []string{"r/a.msgpack"}, keys)
}
