package render

import (
	"image"
	"io/fs"
	"sync"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/pageforge/pageforge/pkg/errors"
)

// ImageInfo holds the intrinsic dimensions of a catalog image.
type ImageInfo struct {
	Width  int
	Height int
}

// ImageCatalog resolves image names to their intrinsic dimensions.
//
// The catalog is shared between the real renderer and the fingerprint
// recorder. Lookups are idempotent: a probe result is memoized, but
// repeated lookups always return the same value, so consulting the
// catalog during fingerprinting can never perturb a later render
// trace. This is the determinism guarantee the reducer depends on.
type ImageCatalog struct {
	fsys fs.FS

	mu    sync.Mutex
	infos map[string]ImageInfo
}

// NewImageCatalog creates a catalog that probes image dimensions from
// the given filesystem on first lookup. PNG, JPEG and GIF are
// supported.
func NewImageCatalog(fsys fs.FS) *ImageCatalog {
	return &ImageCatalog{
		fsys:  fsys,
		infos: make(map[string]ImageInfo),
	}
}

// NewStaticCatalog creates a catalog from a fixed name -> info map.
// No filesystem probing happens; unknown names are errors.
func NewStaticCatalog(infos map[string]ImageInfo) *ImageCatalog {
	c := &ImageCatalog{infos: make(map[string]ImageInfo, len(infos))}
	for name, info := range infos {
		c.infos[name] = info
	}
	return c
}

// Info returns the dimensions of the named image.
// Returns an IMAGE_NOT_FOUND error if the image is unknown and no
// filesystem is configured, or if probing fails.
func (c *ImageCatalog) Info(name string) (ImageInfo, error) {
	if c == nil {
		return ImageInfo{}, errors.New(errors.ErrCodeImageNotFound, "no image catalog configured, cannot resolve %q", name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if info, ok := c.infos[name]; ok {
		return info, nil
	}
	if c.fsys == nil {
		return ImageInfo{}, errors.New(errors.ErrCodeImageNotFound, "image %q not in catalog", name)
	}

	f, err := c.fsys.Open(name)
	if err != nil {
		return ImageInfo{}, errors.Wrap(errors.ErrCodeImageNotFound, err, "open image %q", name)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return ImageInfo{}, errors.Wrap(errors.ErrCodeImageNotFound, err, "decode image %q", name)
	}

	info := ImageInfo{Width: cfg.Width, Height: cfg.Height}
	c.infos[name] = info
	return info, nil
}
