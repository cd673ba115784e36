package compliance

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/wudi/pptxkit/writer"
)

// Rel is one entry of a relationships part.
type Rel struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// External reports whether the target lies outside the package.
func (r Rel) External() bool { return r.TargetMode == "External" }

type relsDoc struct {
	Rels []Rel `xml:"Relationship"`
}

// ParseRels decodes a relationships part.
func ParseRels(data []byte) ([]Rel, error) {
	var doc relsDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Rels, nil
}

// Index maps part names to parts.
func Index(parts []writer.Part) map[string]writer.Part {
	out := make(map[string]writer.Part, len(parts))
	for _, p := range parts {
		out[p.Path] = p
	}
	return out
}

// IsRels reports whether name is a relationships part.
func IsRels(name string) bool {
	return strings.HasSuffix(name, ".rels") && path.Base(path.Dir(name)) == "_rels"
}

// RelsFor returns the relationships part name of source; "" is the package.
func RelsFor(source string) string {
	if source == "" {
		return "_rels/.rels"
	}
	return path.Join(path.Dir(source), "_rels", path.Base(source)+".rels")
}

// SourceOf is the inverse of RelsFor.
func SourceOf(rels string) string {
	dir := path.Dir(path.Dir(rels))
	base := strings.TrimSuffix(path.Base(rels), ".rels")
	if dir == "." {
		return base
	}
	return path.Join(dir, base)
}

// ResolveTarget turns a relationship target into a part name.
func ResolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return strings.TrimPrefix(path.Join(path.Dir("/"+source), target), "/")
}

// WellFormed reports the first XML syntax error in data.
func WellFormed(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		if _, err := dec.Token(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
