// Package imaging turns encoded images into pixel grids for the block hash engine.
//
// It is the decoding collaborator of package blockhash: it reads image bytes from
// URLs, files or in-memory buffers, decides which decoder applies, and returns the
// decoded pixels as a blockhash.PixelGrid. The hash engine never imports this
// package.
//
// # Supported Formats
//
//   - PNG and JPEG, decoded with github.com/disintegration/imaging
//   - WebP, decoded with golang.org/x/image/webp
//
// # Format Resolution
//
// Content is identified by magic bytes, or by a caller-declared type for buffers.
// When the source name carries an extension, the extension and the detected type
// must agree; a ".jpg" file holding PNG data is rejected with ErrFormatMismatch
// rather than decoded. Names without an extension fall back to the detected type.
//
// # Error Handling
//
// Decoding problems surface as ErrUnsupportedFormat, ErrFormatMismatch or ErrDecode
// (use errors.Is), always before any hashing runs. URL failures wrap ErrFetch; file
// errors are wrapped with fmt.Errorf and still match os.ErrNotExist.
//
// # Regions
//
// NamedRegion and Crop cut a decoded image down to a quadrant, half or the center so
// part of an image can be fingerprinted on its own.
//
// # Thread Safety
//
// ImageCache and Fetcher are safe for concurrent use. Decoded pixel grids returned
// from the cache are shared and must not be modified.
package imaging
