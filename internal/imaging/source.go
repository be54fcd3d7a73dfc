package imaging

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// DefaultMaxBytes caps how much an image fetch may read.
const DefaultMaxBytes = 64 << 20

// Buffer is an in-memory image with optional type hints.
type Buffer struct {
	// Data holds the encoded image.
	Data []byte

	// Ext optionally declares the type as a MIME type ("image/png") or an
	// extension ("png"). When empty the content is sniffed.
	Ext string

	// Name is an optional file name whose extension must agree with the content.
	Name string
}

// Source names where an image comes from. Exactly one field should be set; URL
// takes precedence over Path, and Path over Buffer.
type Source struct {
	URL    string
	Path   string
	Buffer *Buffer
}

// ParseSource treats strings beginning with http:// or https:// as URLs and
// everything else as a file path.
func ParseSource(s string) Source {
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return Source{URL: s}
	}
	return Source{Path: s}
}

// String returns a short description for logs and results.
func (s Source) String() string {
	switch {
	case s.URL != "":
		return s.URL
	case s.Path != "":
		return s.Path
	case s.Buffer != nil && s.Buffer.Name != "":
		return s.Buffer.Name
	case s.Buffer != nil:
		return "<buffer>"
	default:
		return "<none>"
	}
}

// Fetcher reads encoded image bytes from URLs, files and buffers.
type Fetcher struct {
	Client   *http.Client
	MaxBytes int64
}

// NewFetcher creates a Fetcher whose HTTP requests time out after timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: timeout},
		MaxBytes: DefaultMaxBytes,
	}
}

// Read returns the encoded bytes of src together with the name used for extension
// checks and any declared type.
//
// For URLs the name is the URL path; for files it is the path itself; for buffers it
// is Buffer.Name.
func (f *Fetcher) Read(ctx context.Context, src Source) (data []byte, name, declared string, err error) {
	switch {
	case src.URL != "":
		data, name, err = f.fetch(ctx, src.URL)
		return data, name, "", err
	case src.Path != "":
		data, err = os.ReadFile(src.Path)
		if err != nil {
			return nil, "", "", fmt.Errorf("failed to read image: %w", err)
		}
		return data, src.Path, "", nil
	case src.Buffer != nil && len(src.Buffer.Data) > 0:
		return src.Buffer.Data, src.Buffer.Name, src.Buffer.Ext, nil
	default:
		return nil, "", "", ErrNoSource
	}
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid URL: %w", ErrFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "image/png,image/jpeg,image/webp,*/*")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("%w: %s returned %s", ErrFetch, u.Redacted(), resp.Status)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: reading body: %w", ErrFetch, err)
	}
	if int64(len(data)) > limit {
		return nil, "", fmt.Errorf("%w: %s exceeds %d bytes", ErrFetch, u.Redacted(), limit)
	}

	return data, u.Path, nil
}

// Open reads, resolves and decodes src in one step.
func (f *Fetcher) Open(ctx context.Context, src Source) (*Decoded, error) {
	data, name, declared, err := f.Read(ctx, src)
	if err != nil {
		return nil, err
	}
	format, err := ResolveFormat(name, declared, data)
	if err != nil {
		return nil, err
	}
	return Decode(data, format)
}
