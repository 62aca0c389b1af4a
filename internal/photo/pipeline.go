// Package photo implements the item photo pipeline: transcode a
// user-supplied image into a bounded-size JPEG, derive a content key,
// upload, and release replaced objects.
package photo

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"inventory/api/internal/fault"
)

// BlobStore is the slice of the object store the pipeline needs.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Remove(ctx context.Context, key string) error
	PublicURL(key string) string
}

type Pipeline struct {
	store    BlobStore
	maxWidth int
	quality  int
	log      zerolog.Logger
}

func NewPipeline(store BlobStore, maxWidth, quality int, log zerolog.Logger) *Pipeline {
	if maxWidth <= 0 {
		maxWidth = 800
	}
	if quality <= 0 || quality > 100 {
		quality = 70
	}
	return &Pipeline{
		store:    store,
		maxWidth: maxWidth,
		quality:  quality,
		log:      log,
	}
}

// Transcode decodes src, downscales it so the longer dimension does not
// exceed the configured max width (never upscaling), and re-encodes it
// as JPEG. Undecodable payloads come back as a decode fault.
func (p *Pipeline) Transcode(src []byte) ([]byte, error) {
	format := sniff(src)
	if format == "" {
		return nil, fault.Decode("unsupported image format", nil)
	}

	var (
		img image.Image
		err error
	)
	r := bytes.NewReader(src)
	switch format {
	case FormatJPEG:
		img, err = jpeg.Decode(r)
	case FormatPNG:
		img, err = png.Decode(r)
	case FormatGIF:
		img, err = gif.Decode(r)
	case FormatWEBP:
		img, err = webp.Decode(r)
	}
	if err != nil {
		return nil, fault.Decode("decode image", err)
	}

	img = p.downscale(img)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fault.Decode("encode jpeg", err)
	}
	return out.Bytes(), nil
}

func (p *Pipeline) downscale(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	longer := w
	if h > w {
		longer = h
	}
	if longer <= p.maxWidth {
		return img
	}

	scale := float64(p.maxWidth) / float64(longer)
	dw := int(float64(w)*scale + 0.5)
	dh := int(float64(h)*scale + 0.5)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// DeriveKey produces a globally-unique object key: random identifier plus
// a timestamp suffix, fixed .jpg extension. Uniqueness is probabilistic;
// no check against the store is made.
func (p *Pipeline) DeriveKey() string {
	return fmt.Sprintf("%s-%d.jpg", ksuid.New().String(), time.Now().UnixMilli())
}

// Upload stores the transcoded photo and returns its public URL with a
// cache-busting token, so a replacement under a fresh key is immediately
// visible to readers.
func (p *Pipeline) Upload(ctx context.Context, key string, data []byte) (string, error) {
	if err := p.store.Put(ctx, key, data); err != nil {
		return "", fault.RemoteIO("upload photo", err)
	}
	return fmt.Sprintf("%s?v=%d", p.store.PublicURL(key), time.Now().UnixMilli()), nil
}

// Release deletes a stored object best-effort. A leaked object is
// preferable to blocking a record mutation, so failures are logged and
// swallowed.
func (p *Pipeline) Release(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := p.store.Remove(ctx, key); err != nil {
		p.log.Warn().Err(err).Str("photo_key", key).Msg("photo release failed")
	}
}
