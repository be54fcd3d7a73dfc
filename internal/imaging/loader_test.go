package imaging

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// createTestImage creates a solid-colour PNG file and returns its path.
// The caller is responsible for removing the file.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	tmpFile, err := os.CreateTemp("", "test-image-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, img); err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to encode image: %v", err)
	}

	return tmpFile.Name()
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache()
	if cache == nil {
		t.Fatal("NewImageCache returned nil")
	}
	if cache.images == nil {
		t.Fatal("NewImageCache did not initialize the image store")
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 100, 80, color.RGBA{255, 0, 0, 255})
	defer os.Remove(imgPath)

	img1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img1.Grid.Width != 100 || img1.Grid.Height != 80 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x80", img1.Grid.Width, img1.Grid.Height)
	}
	if img1.Format != FormatPNG {
		t.Errorf("Format: got %s, want png", img1.Format)
	}
	if got := img1.Grid.Pix[:4]; got[0] != 255 || got[1] != 0 || got[2] != 0 || got[3] != 255 {
		t.Errorf("first pixel: got %v, want [255 0 0 255]", got)
	}

	// Second load should return cached image
	img2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()
	_, err := cache.Load("/nonexistent/path/to/image.png")
	if err == nil {
		t.Error("Load should fail for non-existent file")
	}
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	cache := NewImageCache()

	tmpFile, err := os.CreateTemp("", "invalid-image-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.WriteString("not an image")
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	_, err = cache.Load(tmpFile.Name())
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load: got %v, want ErrUnsupportedFormat", err)
	}
	if cache.Len() != 0 {
		t.Error("failed load should not be cached")
	}
}

func TestImageCache_Load_ExtensionMismatch(t *testing.T) {
	cache := NewImageCache()
	pngPath := createTestImage(t, 10, 10, color.White)
	defer os.Remove(pngPath)

	jpgPath := filepath.Join(t.TempDir(), "actually-png.jpg")
	data, err := os.ReadFile(pngPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(jpgPath, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := cache.Load(jpgPath); !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("Load: got %v, want ErrFormatMismatch", err)
	}
}

func TestImageCache_Clear(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{0, 255, 0, 255})
	defer os.Remove(imgPath)

	if _, err := cache.Load(imgPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cache.Clear()

	if cache.Len() != 0 {
		t.Errorf("Clear did not empty cache: %d images remain", cache.Len())
	}
}

func TestImageCache_Evict(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{0, 0, 255, 255})
	defer os.Remove(imgPath)

	if _, err := cache.Load(imgPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cache.Evict(imgPath)

	if cache.images.Contains(imgPath) {
		t.Error("Evict did not remove image from cache")
	}

	// Evicting an unknown path should not panic
	cache.Evict("/nonexistent/path.png")
}

func TestImageCache_Load_ReloadsChangedFile(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 40, 30, color.RGBA{255, 0, 0, 255})
	defer os.Remove(imgPath)

	var stale []string
	cache.OnStale(func(path string) { stale = append(stale, path) })

	first, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Rewrite the same path with different content and a later mtime.
	replacement := createTestImage(t, 80, 60, color.RGBA{0, 0, 255, 255})
	defer os.Remove(replacement)
	data, err := os.ReadFile(replacement)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(imgPath, data, 0o644); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(imgPath, later, later); err != nil {
		t.Fatal(err)
	}

	second, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if second == first {
		t.Fatal("changed file was served from the cache")
	}
	if second.Grid.Width != 80 || second.Grid.Height != 60 {
		t.Errorf("unexpected dimensions: got %dx%d, want 80x60", second.Grid.Width, second.Grid.Height)
	}
	if got := second.Grid.Pix[:4]; got[0] != 0 || got[2] != 255 {
		t.Errorf("first pixel: got %v, want blue", got)
	}
	if len(stale) != 1 || stale[0] != imgPath {
		t.Errorf("stale callbacks: got %v, want [%s]", stale, imgPath)
	}

	// Unchanged again, so the reloaded copy is reused.
	third, err := cache.Load(imgPath)
	if err != nil {
		t.Fatal(err)
	}
	if third != second || len(stale) != 1 {
		t.Error("unchanged file should be served from the cache")
	}

	// Dimensions and metadata follow the new content too.
	dims, err := GetDimensions(cache, imgPath)
	if err != nil || dims.Width != 80 {
		t.Errorf("GetDimensions: got %+v, %v", dims, err)
	}
}

func TestImageCache_Load_DeletedFile(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 10, 10, color.White)

	if _, err := cache.Load(imgPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	os.Remove(imgPath)

	if _, err := cache.Load(imgPath); err == nil {
		t.Error("Load should fail once the file is gone")
	}
}

func TestImageCache_Bounded(t *testing.T) {
	cache := NewImageCacheSize(2)
	var paths []string
	for i := 0; i < 3; i++ {
		p := createTestImage(t, 8+i, 8, color.White)
		defer os.Remove(p)
		paths = append(paths, p)
		if _, err := cache.Load(p); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}

	if cache.Len() != 2 {
		t.Errorf("Len: got %d, want 2", cache.Len())
	}
	if cache.images.Contains(paths[0]) {
		t.Error("least recently used image should have been evicted")
	}

	if NewImageCacheSize(0).images == nil {
		t.Error("zero size should still build a cache")
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{128, 128, 128, 255})
	defer os.Remove(imgPath)

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(imgPath); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load error: %v", err)
	}
}

func TestLoadImageInfo(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 200, 150, color.RGBA{255, 128, 64, 255})
	defer os.Remove(imgPath)

	info, err := LoadImageInfo(cache, imgPath)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}

	if info.Width != 200 {
		t.Errorf("Width: got %d, want 200", info.Width)
	}
	if info.Height != 150 {
		t.Errorf("Height: got %d, want 150", info.Height)
	}
	if info.Format != "png" || info.MimeType != "image/png" {
		t.Errorf("Format: got %s (%s), want png (image/png)", info.Format, info.MimeType)
	}
	if info.HasAlpha {
		t.Error("opaque image reported alpha")
	}
	if info.FileSizeBytes <= 0 {
		t.Error("FileSizeBytes should be positive")
	}
}

func TestLoadImageInfo_Alpha(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 8, 8, color.NRGBA{10, 20, 30, 0})
	defer os.Remove(imgPath)

	info, err := LoadImageInfo(cache, imgPath)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}
	if !info.HasAlpha {
		t.Error("transparent image should report alpha")
	}
}

func TestLoadImageInfo_NonExistent(t *testing.T) {
	cache := NewImageCache()
	_, err := LoadImageInfo(cache, "/nonexistent/image.png")
	if err == nil {
		t.Error("LoadImageInfo should fail for non-existent file")
	}
}

func TestGetDimensions(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 300, 200, color.RGBA{100, 100, 100, 255})
	defer os.Remove(imgPath)

	dims, err := GetDimensions(cache, imgPath)
	if err != nil {
		t.Fatalf("GetDimensions failed: %v", err)
	}

	if dims.Width != 300 {
		t.Errorf("Width: got %d, want 300", dims.Width)
	}
	if dims.Height != 200 {
		t.Errorf("Height: got %d, want 200", dims.Height)
	}
}

func TestGetDimensions_NonExistent(t *testing.T) {
	cache := NewImageCache()
	_, err := GetDimensions(cache, "/nonexistent/image.png")
	if err == nil {
		t.Error("GetDimensions should fail for non-existent file")
	}
}
