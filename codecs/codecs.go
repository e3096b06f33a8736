// Package codecs compresses and decompresses written plans. A codec is
// selected by the file extension of a plan's destination path.
package codecs

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"go.gazette.dev/rackplan/protocol"
)

// Codec is a compression codec of plan content.
type Codec int

const (
	// None is uncompressed content.
	None Codec = iota
	Gzip
	Snappy
	Zstandard
)

// Decompressor is a ReadCloser where Close closes and releases Decompressor
// state, but does not Close or affect the underlying Reader.
type Decompressor io.ReadCloser

// Compressor is a WriteCloser where Close closes and releases Compressor
// state, potentially flushing final content to the underlying Writer,
// but does not Close or otherwise affect the underlying Writer.
type Compressor io.WriteCloser

// String returns the name of the Codec.
func (c Codec) String() string {
	switch c {
	case None:
		return "NONE"
	case Gzip:
		return "GZIP"
	case Snappy:
		return "SNAPPY"
	case Zstandard:
		return "ZSTANDARD"
	default:
		return fmt.Sprintf("Codec(%d)", int(c))
	}
}

// Validate returns an error if the Codec is not well-formed.
func (c Codec) Validate() error {
	if c < None || c > Zstandard {
		return protocol.NewValidationError("invalid value (%s)", c)
	}
	return nil
}

// ContentEncoding returns the HTTP Content-Encoding of the Codec, or "" if
// the Codec has no registered encoding.
func (c Codec) ContentEncoding() string {
	switch c {
	case Gzip:
		return "gzip"
	case Zstandard:
		return "zstd"
	default:
		return ""
	}
}

// CodecFromExtension matches a file extension to its corresponding Codec.
// Extensions which are not compression extensions map to None.
func CodecFromExtension(ext string) Codec {
	switch strings.ToLower(ext) {
	case ".gz", ".gzip":
		return Gzip
	case ".sz", ".snappy":
		return Snappy
	case ".zst", ".zstandard":
		return Zstandard
	default:
		return None
	}
}

// CodecForPath returns the Codec of the path's extension, along with the
// path having the compression extension removed.
func CodecForPath(p string) (Codec, string) {
	var ext = path.Ext(p)
	var codec = CodecFromExtension(ext)

	if codec == None {
		return None, p
	}
	return codec, strings.TrimSuffix(p, ext)
}

// NewCodecReader returns a Decompressor of the Reader encoded with Codec.
func NewCodecReader(r io.Reader, codec Codec) (Decompressor, error) {
	switch codec {
	case None:
		return io.NopCloser(r), nil
	case Gzip:
		return gzip.NewReader(r)
	case Snappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case Zstandard:
		return zstdNewReader(r)
	default:
		return nil, codec.Validate()
	}
}

// NewCodecWriter returns a Compressor wrapping the Writer encoding with Codec.
func NewCodecWriter(w io.Writer, codec Codec) (Compressor, error) {
	switch codec {
	case None:
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	case Zstandard:
		return zstdNewWriter(w)
	default:
		return nil, codec.Validate()
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

var (
	zstdNewReader = func(io.Reader) (io.ReadCloser, error) {
		return nil, fmt.Errorf("ZSTANDARD was not enabled at compile time")
	}
	zstdNewWriter = func(io.Writer) (io.WriteCloser, error) {
		return nil, fmt.Errorf("ZSTANDARD was not enabled at compile time")
	}
)
