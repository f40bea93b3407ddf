// Package imagecache serves employee avatars as small PNGs, keeping the
// resized result in session storage so each avatar is fetched once per
// console session.
package imagecache

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"rescue-console/internal/model"
	"rescue-console/internal/storage"
)

const (
	DefaultSize = 128
	keyPrefix   = "avatar:"
)

type Fetcher interface {
	Avatar(ctx context.Context, id string) ([]byte, string, error)
}

type Cache struct {
	fetch   Fetcher
	session storage.Storage
	size    int
}

func New(fetch Fetcher, session storage.Storage, size int) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	return &Cache{fetch: fetch, session: session, size: size}
}

func key(id string) string {
	return keyPrefix + id
}

// Avatar returns the PNG for employee id, fetching and resizing it on a miss.
func (c *Cache) Avatar(ctx context.Context, id string) ([]byte, error) {
	if cached, ok, err := c.session.GetItem(ctx, key(id)); err == nil && ok {
		data, err := base64.StdEncoding.DecodeString(cached)
		if err == nil {
			return data, nil
		}
		slog.Warn("discarding undecodable cached avatar", "employee_id", id, "error", err)
	}

	raw, _, err := c.fetch.Avatar(ctx, id)
	if err != nil {
		return nil, err
	}

	out, err := Thumbnail(raw, c.size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrAvatarNotFound, err)
	}

	if err := c.session.SetItem(ctx, key(id), base64.StdEncoding.EncodeToString(out)); err != nil {
		slog.Warn("avatar not cached", "employee_id", id, "error", err)
	}
	return out, nil
}

func (c *Cache) Invalidate(ctx context.Context, id string) error {
	return c.session.RemoveItem(ctx, key(id))
}

// Thumbnail decodes png, jpeg, gif or webp data and re-encodes it as PNG
// fitting inside a size x size square. Smaller images keep their size.
func Thumbnail(data []byte, size int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode avatar: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("decode avatar: empty image")
	}

	dstW, dstH := w, h
	if w > size || h > size {
		if w >= h {
			dstW, dstH = size, max(1, h*size/w)
		} else {
			dstW, dstH = max(1, w*size/h), size
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}
