package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessImageResizesToWebP(t *testing.T) {
	out, err := ProcessImage(bytes.NewReader(pngBytes(t, 800, 400)), 200)
	require.NoError(t, err)

	img, err := webp.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestProcessImageKeepsSmallImages(t *testing.T) {
	out, err := ProcessImage(bytes.NewReader(pngBytes(t, 40, 60)), 200)
	require.NoError(t, err)

	img, err := webp.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 60, img.Bounds().Dy())
}

func TestProcessImageRejectsGarbage(t *testing.T) {
	_, err := ProcessImage(strings.NewReader("not an image"), 200)
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = ProcessImage(bytes.NewReader(make([]byte, MaxUploadBytes+10)), 200)
	assert.ErrorIs(t, err, ErrTooLarge)
}

type fakePut struct {
	in   *s3.PutObjectInput
	body []byte
}

func (f *fakePut) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(in.Body)
	f.body = buf.Bytes()
	return &s3.PutObjectOutput{}, nil
}

func TestImagesSaveUploadsUnderSalonPrefix(t *testing.T) {
	fake := &fakePut{}
	up := &S3{client: fake, bucket: "media", baseURL: "https://cdn.example.com"}

	url, err := NewImages(up).Save(context.Background(), 7, "logo", bytes.NewReader(pngBytes(t, 64, 64)), LogoMaxSide)
	require.NoError(t, err)

	require.NotNil(t, fake.in)
	key := *fake.in.Key
	assert.True(t, strings.HasPrefix(key, "salons/7/logo/"))
	assert.True(t, strings.HasSuffix(key, ".webp"))
	assert.Equal(t, "media", *fake.in.Bucket)
	assert.Equal(t, "image/webp", *fake.in.ContentType)
	assert.Equal(t, "https://cdn.example.com/"+key, url)
	assert.NotEmpty(t, fake.body)
}

func TestDisabledUploader(t *testing.T) {
	_, err := NewImages(Disabled{}).Save(context.Background(), 1, "logo", bytes.NewReader(pngBytes(t, 8, 8)), LogoMaxSide)
	assert.ErrorIs(t, err, ErrDisabled)
}
