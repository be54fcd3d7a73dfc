// Package hasher wires image sources, decoding, the block hash engine and the
// persistent hash cache into one service used by the MCP and HTTP front ends.
package hasher

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/ironsheep/image-blockhash-mcp/internal/blockhash"
	"github.com/ironsheep/image-blockhash-mcp/internal/imaging"
	"github.com/ironsheep/image-blockhash-mcp/internal/store"
)

// Service computes block hashes for image sources. It is safe for concurrent use.
type Service struct {
	fetcher *imaging.Fetcher
	images  *imaging.ImageCache
	store   *store.Cache
	logger  *log.Logger
	debug   bool
	workers int
}

// Option configures a Service.
type Option func(*Service)

// WithFetcher replaces the default fetcher.
func WithFetcher(f *imaging.Fetcher) Option {
	return func(s *Service) { s.fetcher = f }
}

// WithStore enables the persistent hash cache for file sources.
func WithStore(c *store.Cache) Option {
	return func(s *Service) { s.store = c }
}

// WithLogger sets the service logger. When debug is true the hash engine's
// diagnostics are routed to it as well.
func WithLogger(l *log.Logger, debug bool) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
		s.debug = debug
	}
}

// WithWorkers bounds HashMany concurrency.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// New creates a Service.
func New(opts ...Option) *Service {
	s := &Service{
		fetcher: imaging.NewFetcher(0),
		images:  imaging.NewImageCache(),
		logger:  log.New(io.Discard, "", 0),
		workers: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.images.OnStale(s.forget)
	return s
}

// forget drops the persisted hashes of a file that changed on disk.
func (s *Service) forget(path string) {
	s.logger.Printf("%s changed on disk, discarding cached hashes", path)
	if s.store == nil {
		return
	}
	if err := s.store.Delete(path); err != nil {
		s.logger.Printf("hash cache delete failed for %s: %v", path, err)
	}
}

// Images exposes the decoded image cache shared with metadata tools.
func (s *Service) Images() *imaging.ImageCache {
	return s.images
}

// Result is the outcome of hashing one source.
type Result struct {
	Source string `json:"source"`
	Hash   string `json:"hash"`
	Bits   int    `json:"bits"`
	Method string `json:"method"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	// Region names the part of the image that was hashed, if not all of it.
	Region string `json:"region,omitempty"`
	Cached bool   `json:"cached,omitempty"`
}

// HashSource decodes src and computes its block hash.
//
// Parameters and method are validated before any I/O, so an invalid bit count is
// reported without fetching the image. File sources are served from the decoded
// image cache and, when configured, from the persistent store. Both are keyed on
// the file's size and modification time, so a rewritten file is hashed afresh.
func (s *Service) HashSource(ctx context.Context, src imaging.Source, bits int, method blockhash.Method) (*Result, error) {
	if err := validate(bits, method); err != nil {
		return nil, err
	}

	var key *store.Key
	if src.Path != "" && src.URL == "" && s.store != nil {
		if fi, err := os.Stat(src.Path); err == nil {
			key = &store.Key{Path: src.Path, Size: fi.Size(), ModTime: fi.ModTime(), Bits: bits, Method: method.String()}
			entry, ok, err := s.store.Get(*key)
			if err != nil {
				s.logger.Printf("hash cache lookup failed for %s: %v", src.Path, err)
			} else if ok {
				return &Result{
					Source: src.String(),
					Hash:   entry.Hash,
					Bits:   bits,
					Method: method.String(),
					Width:  entry.Width,
					Height: entry.Height,
					Format: entry.Format,
					Cached: true,
				}, nil
			}
		}
	}

	dec, err := s.decode(ctx, src)
	if err != nil {
		return nil, err
	}

	res, err := s.fingerprint(src, dec, bits, method)
	if err != nil {
		return nil, err
	}

	if key != nil {
		entry := store.Entry{Hash: res.Hash, Width: res.Width, Height: res.Height, Format: res.Format}
		if err := s.store.Put(*key, entry); err != nil {
			s.logger.Printf("hash cache store failed for %s: %v", src.Path, err)
		}
	}

	return res, nil
}

// HashRegion hashes one named part of src, such as "top-left" or "center". See
// imaging.NamedRegion for the accepted names. Region hashes bypass the persistent
// store.
func (s *Service) HashRegion(ctx context.Context, src imaging.Source, region string, bits int, method blockhash.Method) (*Result, error) {
	if err := validate(bits, method); err != nil {
		return nil, err
	}

	dec, err := s.decode(ctx, src)
	if err != nil {
		return nil, err
	}
	r, err := imaging.NamedRegion(region, dec.Grid.Width, dec.Grid.Height)
	if err != nil {
		return nil, err
	}
	part, err := imaging.Crop(dec, r)
	if err != nil {
		return nil, err
	}

	res, err := s.fingerprint(src, part, bits, method)
	if err != nil {
		return nil, err
	}
	res.Region = region
	return res, nil
}

func (s *Service) fingerprint(src imaging.Source, dec *imaging.Decoded, bits int, method blockhash.Method) (*Result, error) {
	var opts []blockhash.Option
	if s.debug {
		opts = append(opts, blockhash.WithLogger(s.logger))
	}
	h, err := blockhash.Fingerprint(dec.Grid, bits, method, opts...)
	if err != nil {
		return nil, err
	}

	return &Result{
		Source: src.String(),
		Hash:   h.String(),
		Bits:   bits,
		Method: method.String(),
		Width:  dec.Grid.Width,
		Height: dec.Grid.Height,
		Format: string(dec.Format),
	}, nil
}

func (s *Service) decode(ctx context.Context, src imaging.Source) (*imaging.Decoded, error) {
	if src.URL == "" && src.Path != "" {
		return s.images.Load(src.Path)
	}
	return s.fetcher.Open(ctx, src)
}

// CompareResult reports the hashes of two sources and their Hamming distance.
type CompareResult struct {
	A        *Result `json:"a"`
	B        *Result `json:"b"`
	Distance int     `json:"distance"`
	Bits     int     `json:"bits"`
	// Similarity is 1 - distance/bits.
	Similarity float64 `json:"similarity"`
}

// Compare hashes two sources with the same parameters and reports their distance.
func (s *Service) Compare(ctx context.Context, a, b imaging.Source, bits int, method blockhash.Method) (*CompareResult, error) {
	ra, err := s.HashSource(ctx, a, bits, method)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a, err)
	}
	rb, err := s.HashSource(ctx, b, bits, method)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b, err)
	}

	d, err := Distance(ra.Hash, rb.Hash, bits)
	if err != nil {
		return nil, err
	}

	return &CompareResult{
		A:          ra,
		B:          rb,
		Distance:   d,
		Bits:       bits,
		Similarity: 1 - float64(d)/float64(bits),
	}, nil
}

// Distance parses two hex hashes of the given length and returns their Hamming
// distance.
func Distance(a, b string, bits int) (int, error) {
	ha, err := blockhash.ParseHash(a, bits)
	if err != nil {
		return 0, fmt.Errorf("hash a: %w", err)
	}
	hb, err := blockhash.ParseHash(b, bits)
	if err != nil {
		return 0, fmt.Errorf("hash b: %w", err)
	}
	return ha.Distance(hb)
}

// BatchItem is the result or error for one path in a HashMany call.
type BatchItem struct {
	Path   string  `json:"path"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// HashMany hashes every path with a bounded worker pool. Results are returned in
// input order; per-path failures are reported in BatchItem.Error.
func (s *Service) HashMany(ctx context.Context, paths []string, bits int, method blockhash.Method) ([]BatchItem, error) {
	if err := validate(bits, method); err != nil {
		return nil, err
	}

	items := make([]BatchItem, len(paths))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < min(s.workers, len(paths)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				items[i] = s.hashItem(ctx, paths[i], bits, method)
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return items, nil
}

func (s *Service) hashItem(ctx context.Context, path string, bits int, method blockhash.Method) (item BatchItem) {
	item.Path = path
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("hash worker recovered from panic on %s: %v", path, r)
			item.Result = nil
			item.Error = fmt.Sprintf("internal error: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		item.Error = err.Error()
		return item
	}
	res, err := s.HashSource(ctx, imaging.ParseSource(path), bits, method)
	if err != nil {
		item.Error = err.Error()
		return item
	}
	item.Result = res
	return item
}

func validate(bits int, method blockhash.Method) error {
	if err := blockhash.ValidateBits(bits); err != nil {
		return err
	}
	if !method.Valid() {
		return fmt.Errorf("%w: %d", blockhash.ErrUnsupportedMethod, int(method))
	}
	return nil
}
