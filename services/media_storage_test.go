package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	return &s3.PutObjectOutput{}, f.err
}

func TestNewMediaStorageUnconfigured(t *testing.T) {
	m, err := NewMediaStorage(context.Background(), map[string]string{})
	assert.NoError(t, err)
	assert.Nil(t, m)
}

func TestUpload(t *testing.T) {
	fake := &fakePutter{}
	m := newMediaStorage(fake, "site-media", "https://cdn.example.com/", "/projects/")

	url, err := m.Upload(context.Background(), strings.NewReader("data"), 4, "image/png", ".png")
	require.NoError(t, err)

	require.NotNil(t, fake.input)
	key := aws.ToString(fake.input.Key)
	assert.True(t, strings.HasPrefix(key, "projects/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Equal(t, "site-media", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "image/png", aws.ToString(fake.input.ContentType))
	assert.Equal(t, "https://cdn.example.com/"+key, url)
}

func TestUploadFailure(t *testing.T) {
	m := newMediaStorage(&fakePutter{err: errors.New("AccessDenied")}, "b", "https://cdn.example.com", "")
	_, err := m.Upload(context.Background(), strings.NewReader("x"), 1, "video/mp4", "mp4")
	assert.ErrorContains(t, err, "AccessDenied")
}
