package cloudwriter

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, params)
	f.bodies = append(f.bodies, body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Writer_UploadsOnClose(t *testing.T) {
	putter := &fakePutter{}
	factory := NewS3WriterFactoryWithClient(putter)

	w, err := factory.NewWriter("snapshots", "foods/latest.json")
	require.NoError(t, err)

	_, err = w.Write([]byte(`{"count":`))
	require.NoError(t, err)
	_, err = w.Write([]byte(`0}`))
	require.NoError(t, err)
	assert.Empty(t, putter.inputs)

	require.NoError(t, w.Close())
	require.Len(t, putter.inputs, 1)
	assert.Equal(t, "snapshots", aws.ToString(putter.inputs[0].Bucket))
	assert.Equal(t, "foods/latest.json", aws.ToString(putter.inputs[0].Key))
	assert.Equal(t, "application/json", aws.ToString(putter.inputs[0].ContentType))
	assert.Equal(t, `{"count":0}`, string(putter.bodies[0]))

	assert.ErrorIs(t, w.Close(), ErrWriterClosed)
	_, err = w.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrWriterClosed)
}

func TestS3Writer_PropagatesUploadFailure(t *testing.T) {
	denied := errors.New("access denied")
	factory := NewS3WriterFactoryWithClient(&fakePutter{err: denied})

	w, err := factory.NewWriterContext(context.Background(), "snapshots", "foods.json")
	require.NoError(t, err)
	assert.ErrorIs(t, w.Close(), denied)
}

func TestS3WriterFactory_RequiresBucket(t *testing.T) {
	factory := NewS3WriterFactoryWithClient(&fakePutter{})
	_, err := factory.NewWriter("", "foods.json")
	assert.ErrorIs(t, err, ErrNoBucket)
}
