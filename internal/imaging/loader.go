package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"
	"time"
)

// ImageCache holds decoded frame files for replay, safe for concurrent use.
//
// A frame file is decoded once and then served from memory on every tick.
// Each Load stats the file; when its size or modification time differs from
// the cached entry the file is decoded again, so a frame rewritten by another
// process is picked up on the next tick without restarting.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("/path/to/frame.png")
//	if err != nil {
//	    return err
//	}
//	cache.Evict("/path/to/frame.png") // Optional: drop the decoded frame
type ImageCache struct {
	mu     sync.RWMutex
	frames map[string]cachedFrame
}

type cachedFrame struct {
	img     image.Image
	size    int64
	modTime time.Time
}

func (f cachedFrame) current(fi os.FileInfo) bool {
	return f.size == fi.Size() && f.modTime.Equal(fi.ModTime())
}

// NewImageCache creates an empty frame cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		frames: make(map[string]cachedFrame),
	}
}

// Load returns the decoded frame at path, decoding it from disk when it is
// not cached or has changed since it was cached.
//
// Supported formats are PNG, JPEG and GIF. A failed load leaves any earlier
// entry for path untouched.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not a valid PNG, JPEG, or GIF image
func (c *ImageCache) Load(path string) (image.Image, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat frame: %w", err)
	}

	c.mu.RLock()
	entry, ok := c.frames[path]
	c.mu.RUnlock()
	if ok && entry.current(fi) {
		return entry.img, nil
	}

	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.frames[path] = cachedFrame{img: img, size: fi.Size(), modTime: fi.ModTime()}
	c.mu.Unlock()

	return img, nil
}

// Evict drops the decoded frame for path. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.frames, path)
	c.mu.Unlock()
}

// Len reports how many decoded frames the cache holds.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames)
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame %s: %w", path, err)
	}
	return img, nil
}
