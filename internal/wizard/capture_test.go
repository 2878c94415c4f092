package wizard

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCamera struct {
	starts, stops int
	frames        []Frame
	startErr      error
}

func (c *fakeCamera) Start(context.Context) error {
	if c.startErr != nil {
		return c.startErr
	}
	c.starts++
	return nil
}

func (c *fakeCamera) Capture(context.Context) (Frame, error) {
	if len(c.frames) == 0 {
		return Frame{}, ErrNoFrame
	}
	f := c.frames[0]
	c.frames = c.frames[1:]
	return f, nil
}

func (c *fakeCamera) Stop() error {
	c.stops++
	return nil
}

func TestCaptureSession(t *testing.T) {
	ctx := context.Background()
	cam := &fakeCamera{frames: []Frame{jpegFrame(), jpegFrame()}}
	previews := NewMemoryPreviews()
	s := NewCaptureSession(cam, previews)

	_, _, err := s.Capture(ctx)
	assert.ErrorIs(t, err, ErrCameraInactive)

	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Start(ctx))
	assert.Equal(t, 1, cam.starts)
	assert.True(t, s.Active())

	_, p1, err := s.Capture(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, previews.Outstanding())

	_, p2, err := s.Capture(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, p1.ID(), p2.ID())
	_, live := previews.Lookup(p1.ID())
	assert.False(t, live, "previous preview revoked before the next one")
	assert.Equal(t, 1, previews.Outstanding())

	_, _, err = s.Capture(ctx)
	assert.ErrorIs(t, err, ErrNoFrame)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
	assert.Equal(t, 1, cam.stops)
	assert.Equal(t, 0, previews.Outstanding())
	assert.False(t, s.Active())
}

func TestCaptureSessionStartFailure(t *testing.T) {
	cam := &fakeCamera{startErr: errors.New("permission denied")}
	s := NewCaptureSession(cam, NewMemoryPreviews())

	err := s.Start(context.Background())
	assert.ErrorContains(t, err, "permission denied")
	assert.False(t, s.Active())
	require.NoError(t, s.Stop())
	assert.Equal(t, 0, cam.stops)
}

func TestWizardCapturePhoto(t *testing.T) {
	ctx := context.Background()

	_, err := New().CapturePhoto(ctx, 0)
	assert.ErrorIs(t, err, ErrNoCamera)

	cam := &fakeCamera{frames: []Frame{jpegFrame()}}
	previews := NewMemoryPreviews()
	w := New(WithCamera(cam), WithPreviews(previews))

	id, err := w.CapturePhoto(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, w.PhotoIDs(1))
	// one preview for the session thumbnail, one for the attached photo
	assert.Equal(t, 2, previews.Outstanding())

	_, err = w.CapturePhoto(ctx, 5)
	assert.ErrorIs(t, err, ErrNoSuchItem)

	require.NoError(t, w.Close())
	assert.Equal(t, 1, cam.stops)
	assert.Equal(t, 0, previews.Outstanding())

	_, err = w.CapturePhoto(ctx, 0)
	assert.ErrorIs(t, err, ErrClosed)
}

func writePNG(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, "frente.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestFileCamera(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	pngPath := writePNG(t, dir)
	txtPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("not an image"), 0o600))

	cam := NewFileCamera()
	cam.Point(pngPath)
	_, err := cam.Capture(ctx)
	assert.ErrorIs(t, err, ErrCameraInactive)

	require.NoError(t, cam.Start(ctx))

	cam.Point(pngPath)
	f, err := cam.Capture(ctx)
	require.NoError(t, err)
	assert.Equal(t, "frente.png", f.Name)
	assert.Equal(t, "image/png", f.MimeType)
	assert.NotEmpty(t, f.Data)

	_, err = cam.Capture(ctx)
	assert.ErrorIs(t, err, ErrNoFrame, "each Point serves one capture")

	cam.Point(txtPath)
	_, err = cam.Capture(ctx)
	assert.ErrorIs(t, err, ErrNotImage)

	gifPath := filepath.Join(dir, "anim.gif")
	require.NoError(t, os.WriteFile(gifPath, []byte("GIF89a\x01\x00\x01\x00"), 0o600))
	cam.Point(gifPath)
	_, err = cam.Capture(ctx)
	assert.ErrorIs(t, err, ErrNotImage, "only jpeg, png and webp are stored")

	cam.Point(filepath.Join(dir, "missing.jpg"))
	_, err = cam.Capture(ctx)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, cam.Stop())
	cam.Point(pngPath)
	_, err = cam.Capture(ctx)
	assert.ErrorIs(t, err, ErrCameraInactive)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, cam.Start(cctx), context.Canceled)
}
