package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	stddraw "image/draw"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"checklistapi/internal/logging"
	"checklistapi/internal/media"
	"checklistapi/internal/model"
	"checklistapi/internal/storage"
)

var (
	ErrUnsupportedSource = errors.New("unsupported image source")
	ErrImageTooLarge     = errors.New("image exceeds size limit")
)

// DefaultMaxPixels admits a 48 MP camera frame.
const DefaultMaxPixels = 48_000_000

// Image is a photo ready to embed: always JPEG, at most maxDim on its longest side.
type Image struct {
	Data   []byte
	Width  int
	Height int
}

// LoadResult is the outcome of one media asset.
type LoadResult struct {
	Image *Image
	Err   error
}

type LoaderOption func(*ImageLoader)

func WithHTTPClient(c *http.Client) LoaderOption { return func(l *ImageLoader) { l.client = c } }

// WithFetchTimeout bounds remote fetches of the default client. It has no effect with WithHTTPClient.
func WithFetchTimeout(d time.Duration) LoaderOption { return func(l *ImageLoader) { l.timeout = d } }

func WithConcurrency(n int) LoaderOption { return func(l *ImageLoader) { l.concurrency = n } }

func WithMaxBytes(n int64) LoaderOption { return func(l *ImageLoader) { l.maxBytes = n } }

func WithMaxDimension(px int) LoaderOption { return func(l *ImageLoader) { l.maxDim = px } }

// WithMaxPixels caps width*height as declared by the image header, checked before decoding.
func WithMaxPixels(n int) LoaderOption { return func(l *ImageLoader) { l.maxPixels = n } }

func WithLoaderLogger(log *zap.Logger) LoaderOption {
	return func(l *ImageLoader) { l.log = logging.Component(log, "image_loader") }
}

// ImageLoader resolves media content (inline data, bucket objects, remote URLs) into embeddable images.
type ImageLoader struct {
	store       storage.Storage
	client      *http.Client
	timeout     time.Duration
	concurrency int
	maxBytes    int64
	maxDim      int
	maxPixels   int
	log         *zap.Logger
}

// NewImageLoader builds a loader. store may be nil, in which case every URL is fetched over HTTP.
func NewImageLoader(store storage.Storage, opts ...LoaderOption) *ImageLoader {
	l := &ImageLoader{
		store:       store,
		timeout:     10 * time.Second,
		concurrency: 4,
		maxBytes:    10 << 20,
		maxDim:      1024,
		maxPixels:   DefaultMaxPixels,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.client == nil {
		l.client = &http.Client{
			Timeout:   l.timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if l.concurrency < 1 {
		l.concurrency = 1
	}
	return l
}

// LoadAll resolves every inspection photo of c concurrently.
// The result is indexed [inspection][media]; failures are reported per slot.
func (l *ImageLoader) LoadAll(ctx context.Context, c *model.Checklist) [][]LoadResult {
	out := make([][]LoadResult, len(c.Inspections))
	var g errgroup.Group
	g.SetLimit(l.concurrency)
	for i, it := range c.Inspections {
		out[i] = make([]LoadResult, len(it.Media))
		for j, m := range it.Media {
			g.Go(func() error {
				img, err := l.Load(ctx, m.Content)
				if err != nil {
					l.log.Warn("image skipped",
						zap.String("event", "image_skipped"),
						zap.Int("item", i),
						zap.Int("media", j),
						zap.Error(err),
					)
				}
				out[i][j] = LoadResult{Image: img, Err: err}
				return nil
			})
		}
	}
	_ = g.Wait()
	return out
}

// Load resolves and normalizes a single media content string.
func (l *ImageLoader) Load(ctx context.Context, content string) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := l.fetch(ctx, content)
	if err != nil {
		return nil, err
	}
	return l.normalize(raw)
}

func (l *ImageLoader) fetch(ctx context.Context, content string) ([]byte, error) {
	m := model.MediaAsset{Content: content}
	switch {
	case m.IsInline():
		p, err := media.ParseDataURL(content, int(l.maxBytes))
		if err != nil {
			return nil, err
		}
		return p.Data, nil
	case !m.IsRemote():
		return nil, ErrUnsupportedSource
	}

	if l.store != nil {
		if key, ok := l.store.KeyFromURL(content); ok {
			rc, _, err := l.store.Get(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("get object %s: %w", key, err)
			}
			defer rc.Close()
			return l.readLimited(rc)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, content, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}
	return l.readLimited(resp.Body)
}

func (l *ImageLoader) readLimited(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > l.maxBytes {
		return nil, ErrImageTooLarge
	}
	return b, nil
}

func (l *ImageLoader) checkPixels(raw []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		var webpErr error
		if cfg, webpErr = webp.DecodeConfig(bytes.NewReader(raw)); webpErr != nil {
			return fmt.Errorf("decode image header: %w", err)
		}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("decode image header: empty bounds")
	}
	if l.maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(l.maxPixels) {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, l.maxPixels)
	}
	return nil
}

func (l *ImageLoader) normalize(raw []byte) (*Image, error) {
	if err := l.checkPixels(raw); err != nil {
		return nil, err
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		decoded, webpErr := webp.Decode(bytes.NewReader(raw))
		if webpErr != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		src = decoded
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("decode image: empty bounds")
	}
	if longest := max(w, h); longest > l.maxDim {
		w = max(1, w*l.maxDim/longest)
		h = max(1, h*l.maxDim/longest)
	}

	// JPEG has no alpha; flatten onto white first.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	stddraw.Draw(dst, dst.Bounds(), image.White, image.Point{}, stddraw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return &Image{Data: buf.Bytes(), Width: w, Height: h}, nil
}
