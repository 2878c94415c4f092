package wizard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"checklistapi/internal/media"
)

var (
	ErrCameraInactive = errors.New("camera is not started")
	ErrNoCamera       = errors.New("no camera source configured")
	ErrNoFrame        = errors.New("no frame available")
	ErrNotImage       = errors.New("frame is not an image")
)

// Frame is a single captured still image.
type Frame struct {
	Name     string
	MimeType string
	Data     []byte
}

// CameraSource is an exclusively owned capture device.
type CameraSource interface {
	Start(ctx context.Context) error
	Capture(ctx context.Context) (Frame, error)
	// Stop releases every track. Calling it on a stopped source is a no-op.
	Stop() error
}

// Preview is a locally revocable handle to a frame shown to the operator.
type Preview interface {
	ID() string
	Revoke()
}

// PreviewStore issues preview handles.
type PreviewStore interface {
	Create(f Frame) (Preview, error)
}

// MemoryPreviews is an in-process PreviewStore that tracks outstanding handles.
type MemoryPreviews struct {
	mu     sync.Mutex
	seq    atomic.Int64
	frames map[string]Frame
}

func NewMemoryPreviews() *MemoryPreviews {
	return &MemoryPreviews{frames: make(map[string]Frame)}
}

func (m *MemoryPreviews) Create(f Frame) (Preview, error) {
	id := fmt.Sprintf("preview-%d", m.seq.Add(1))
	m.mu.Lock()
	m.frames[id] = f
	m.mu.Unlock()
	return &memoryPreview{id: id, store: m}, nil
}

// Lookup returns the frame behind a live handle.
func (m *MemoryPreviews) Lookup(id string) (Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.frames[id]
	return f, ok
}

// Outstanding is the number of handles not yet revoked.
func (m *MemoryPreviews) Outstanding() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}

func (m *MemoryPreviews) revoke(id string) {
	m.mu.Lock()
	delete(m.frames, id)
	m.mu.Unlock()
}

type memoryPreview struct {
	id    string
	store *MemoryPreviews
	once  sync.Once
}

func (p *memoryPreview) ID() string { return p.id }

func (p *memoryPreview) Revoke() {
	p.once.Do(func() { p.store.revoke(p.id) })
}

// CaptureSession owns a CameraSource for one live capture.
// Each capture replaces the session's last preview; Stop releases both.
type CaptureSession struct {
	mu       sync.Mutex
	src      CameraSource
	previews PreviewStore
	active   bool
	last     Preview
}

func NewCaptureSession(src CameraSource, previews PreviewStore) *CaptureSession {
	return &CaptureSession{src: src, previews: previews}
}

// Start acquires the camera. Starting an active session is a no-op.
func (s *CaptureSession) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return nil
	}
	if err := s.src.Start(ctx); err != nil {
		return fmt.Errorf("start camera: %w", err)
	}
	s.active = true
	return nil
}

// Capture grabs a frame and returns it with a fresh preview.
// The previous preview is revoked before the new one is created.
func (s *CaptureSession) Capture(ctx context.Context) (Frame, Preview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return Frame{}, nil, ErrCameraInactive
	}
	f, err := s.src.Capture(ctx)
	if err != nil {
		return Frame{}, nil, fmt.Errorf("capture frame: %w", err)
	}
	if s.last != nil {
		s.last.Revoke()
		s.last = nil
	}
	p, err := s.previews.Create(f)
	if err != nil {
		return Frame{}, nil, fmt.Errorf("create preview: %w", err)
	}
	s.last = p
	return f, p, nil
}

// Active reports whether the camera is currently held.
func (s *CaptureSession) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Stop releases the camera and the last preview. It is safe to call repeatedly.
func (s *CaptureSession) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last != nil {
		s.last.Revoke()
		s.last = nil
	}
	if !s.active {
		return nil
	}
	s.active = false
	return s.src.Stop()
}

// FileCamera is a CameraSource whose frames are read from image files.
// Point selects the file returned by the next Capture.
type FileCamera struct {
	mu     sync.Mutex
	active bool
	path   string
	read   func(string) ([]byte, error)
}

func NewFileCamera() *FileCamera {
	return &FileCamera{read: os.ReadFile}
}

func (c *FileCamera) Point(path string) {
	c.mu.Lock()
	c.path = path
	c.mu.Unlock()
}

func (c *FileCamera) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.active = true
	c.mu.Unlock()
	return nil
}

func (c *FileCamera) Capture(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	c.mu.Lock()
	active, path := c.active, c.path
	c.path = ""
	c.mu.Unlock()

	if !active {
		return Frame{}, ErrCameraInactive
	}
	if path == "" {
		return Frame{}, ErrNoFrame
	}
	data, err := c.read(path)
	if err != nil {
		return Frame{}, fmt.Errorf("read %s: %w", path, err)
	}
	mime, err := media.SniffImage(data)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %s: %w", ErrNotImage, path, err)
	}
	return Frame{Name: filepath.Base(path), MimeType: mime, Data: data}, nil
}

func (c *FileCamera) Stop() error {
	c.mu.Lock()
	c.active = false
	c.mu.Unlock()
	return nil
}
