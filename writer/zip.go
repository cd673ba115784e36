package writer

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"time"
)

// ZipArchive writes parts into a zip container.
type ZipArchive struct {
	w           io.Writer
	compression Compression
	modified    time.Time
}

// NewZipArchive returns an ArchiveWriter targeting w. Entries carry the
// given modification time, or the zip epoch when zero.
func NewZipArchive(w io.Writer, c Compression, modified time.Time) *ZipArchive {
	return &ZipArchive{w: w, compression: c, modified: modified}
}

func (z *ZipArchive) WriteParts(ctx context.Context, parts []Part) error {
	zw := zip.NewWriter(z.w)
	method := zip.Deflate
	if z.compression == CompressionStore {
		method = zip.Store
	}
	for _, p := range parts {
		if err := ctx.Err(); err != nil {
			_ = zw.Close()
			return err
		}
		hdr := &zip.FileHeader{Name: p.Path, Method: method, Modified: z.modified}
		// media is already compressed
		if p.Binary {
			hdr.Method = zip.Store
		}
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			_ = zw.Close()
			return fmt.Errorf("create %s: %w", p.Path, err)
		}
		if _, err := fw.Write(p.Content); err != nil {
			_ = zw.Close()
			return fmt.Errorf("write %s: %w", p.Path, err)
		}
	}
	return zw.Close()
}

// MemoryArchive collects parts in memory.
type MemoryArchive struct {
	Parts []Part
}

func (m *MemoryArchive) WriteParts(_ context.Context, parts []Part) error {
	m.Parts = append(m.Parts[:0], parts...)
	return nil
}

// Part returns the named part.
func (m *MemoryArchive) Part(path string) (Part, bool) {
	for _, p := range m.Parts {
		if p.Path == path {
			return p, true
		}
	}
	return Part{}, false
}

// ErrMalformedPart is reported by WellFormedInterceptor.
var ErrMalformedPart = errors.New("malformed XML part")

// WellFormedInterceptor checks that every XML part parses before it is archived.
type WellFormedInterceptor struct{}

func (WellFormedInterceptor) BeforeWrite(_ context.Context, part *Part) error {
	if part.Binary {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(part.Content))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w: %v", part.Path, ErrMalformedPart, err)
		}
	}
}

func (WellFormedInterceptor) AfterWrite(context.Context, []Part) error { return nil }
