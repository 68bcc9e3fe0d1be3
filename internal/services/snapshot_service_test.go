package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestSnapshotServiceDisabled(t *testing.T) {
	svc, err := NewSnapshotService(testConfig(), quietLogger())
	require.NoError(t, err)
	assert.False(t, svc.Enabled())

	_, err = svc.Save(context.Background(), "shop.com", "homepage.html", "text/html", []byte("x"))
	assert.Error(t, err)

	var nilSvc *SnapshotService
	assert.False(t, nilSvc.Enabled())
}

func TestSnapshotServiceLocal(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.SnapshotsEnabled = true
	cfg.Storage.LocalPath = t.TempDir()
	cfg.Storage.BaseURL = "http://localhost:8080/snapshots/"

	svc, err := NewSnapshotService(cfg, quietLogger())
	require.NoError(t, err)

	res, err := svc.Save(context.Background(), "../shop.com", "homepage.html", "text/html", []byte("<html></html>"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.Key, "snapshots/__shop.com/"), res.Key)
	assert.Equal(t, "http://localhost:8080/snapshots/"+res.Key, res.URL)
	assert.EqualValues(t, 13, res.Size)

	data, err := os.ReadFile(filepath.Join(cfg.Storage.LocalPath, filepath.FromSlash(res.Key)))
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))
}

func TestSnapshotServiceS3(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.SnapshotsEnabled = true
	cfg.AWS.Region = "us-east-1"
	cfg.AWS.S3Bucket = "insights-snapshots"

	fake := &fakeS3{}
	svc := &SnapshotService{s3Client: fake, config: cfg, logger: quietLogger().WithField("component", "snapshots")}

	res, err := svc.Save(context.Background(), "shop.com", "products.json", "application/json", []byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, "insights-snapshots", aws.StringValue(fake.input.Bucket))
	assert.Equal(t, "application/json", aws.StringValue(fake.input.ContentType))
	assert.Equal(t, "[]", string(fake.body))
	assert.Equal(t, "https://insights-snapshots.s3.us-east-1.amazonaws.com/"+res.Key, res.URL)

	cfg.AWS.CloudFrontURL = "https://cdn.example.net/"
	res, err = svc.Save(context.Background(), "shop.com", "products.json", "application/json", []byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.net/"+res.Key, res.URL)

	fake.err = errors.New("access denied")
	_, err = svc.Save(context.Background(), "shop.com", "products.json", "application/json", []byte(`[]`))
	assert.ErrorContains(t, err, "access denied")
}
