package imaging

import (
	"fmt"
	"os"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheEntries bounds the number of decoded images an ImageCache keeps.
const DefaultCacheEntries = 32

// cachedImage is a decoded image together with the file facts it was read under.
type cachedImage struct {
	img     *Decoded
	size    int64
	modTime time.Time
}

// ImageCache provides thread-safe caching of decoded images to avoid redundant disk
// reads and decodes.
//
// The cache stores *Decoded values keyed by their file path, along with the size
// and modification time seen when the file was read. Every Load stats the file;
// an entry whose size or modification time no longer match is dropped and the
// file is decoded again.
//
// ImageCache is safe for concurrent use by multiple goroutines. Cached pixel grids
// are shared between callers and must be treated as read-only.
//
// # Memory Management
//
// The cache holds at most a fixed number of images and evicts the least recently
// used one when full. Evict() and Clear() remove entries explicitly.
type ImageCache struct {
	images *lru.Cache[string, cachedImage]

	mu      sync.RWMutex
	onStale func(path string)
}

// NewImageCache creates an empty cache holding up to DefaultCacheEntries images.
func NewImageCache() *ImageCache {
	return NewImageCacheSize(DefaultCacheEntries)
}

// NewImageCacheSize creates an empty cache holding up to n images. Values below
// one are raised to one.
func NewImageCacheSize(n int) *ImageCache {
	images, err := lru.New[string, cachedImage](max(n, 1))
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return &ImageCache{images: images}
}

// OnStale registers fn to be called with the path of any cached image found to
// have changed on disk. It replaces any earlier callback.
func (c *ImageCache) OnStale(fn func(path string)) {
	c.mu.Lock()
	c.onStale = fn
	c.mu.Unlock()
}

// Load retrieves a decoded image from the cache or loads it from disk.
//
// Parameters:
//   - path: Absolute or relative file path to a PNG, JPEG or WebP image. If the
//     path has an extension it must match the file content.
//
// Returns:
//   - *Decoded: The decoded pixels and detected format.
//   - error: Non-nil if the file cannot be read, its type cannot be resolved, or
//     it fails to decode.
//
// The image is cached using the exact path string provided. Different paths to the
// same file (e.g., relative vs absolute) will result in separate cache entries.
func (c *ImageCache) Load(path string) (*Decoded, error) {
	// Stat before reading so a write racing the read leaves a mismatch behind.
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	if cached, ok := c.images.Get(path); ok {
		if cached.size == stat.Size() && cached.modTime.Equal(stat.ModTime()) {
			return cached.img, nil
		}
		c.images.Remove(path)
		c.stale(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	format, err := ResolveFormat(path, "", data)
	if err != nil {
		return nil, err
	}

	img, err := Decode(data, format)
	if err != nil {
		return nil, err
	}

	c.images.Add(path, cachedImage{img: img, size: stat.Size(), modTime: stat.ModTime()})

	return img, nil
}

func (c *ImageCache) stale(path string) {
	c.mu.RLock()
	fn := c.onStale
	c.mu.RUnlock()
	if fn != nil {
		fn(path)
	}
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	return c.images.Len()
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.images.Purge()
}

// Evict removes a specific image from the cache by its path.
//
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.images.Remove(path)
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected image format: "png", "jpeg" or "webp".
	// Detection is based on file content, checked against the extension.
	Format string `json:"format"`

	// MimeType is the MIME type matching Format.
	MimeType string `json:"mime_type"`

	// HasAlpha indicates whether any pixel is not fully opaque.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image and returns metadata about it.
//
// The image is loaded into the cache if not already present.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &ImageInfo{
		Width:         img.Grid.Width,
		Height:        img.Grid.Height,
		Format:        string(img.Format),
		MimeType:      img.Format.MimeType(),
		HasAlpha:      img.HasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image without additional metadata.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	return &DimensionsResult{
		Width:  img.Grid.Width,
		Height: img.Grid.Height,
	}, nil
}
