// Package opc validates the packaging layer: part names, the content type
// manifest and relationship targets.
package opc

import (
	"context"
	"encoding/xml"
	"path"
	"strings"

	"github.com/wudi/pptxkit/compliance"
	"github.com/wudi/pptxkit/writer"
)

const (
	ManifestName = "[Content_Types].xml"
	Standard     = "OPC"
)

// Violation codes.
const (
	CodeManifestMissing  = "OPC001" // manifest absent or not the first part
	CodeDuplicatePart    = "OPC002"
	CodeNoContentType    = "OPC003"
	CodeDanglingTarget   = "OPC004" // internal relationship to a missing part
	CodeDanglingOverride = "OPC005" // override naming a missing part (warning)
	CodeMalformed        = "OPC006"
	CodeBadPartName      = "OPC007"
	CodeDuplicateRelID   = "OPC008"
	CodeOrphanRels       = "OPC009" // relationships part without a source part
)

type manifest struct {
	Defaults []struct {
		Extension   string `xml:"Extension,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Default"`
	Overrides []struct {
		PartName    string `xml:"PartName,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Override"`
}

type Validator struct{}

func NewValidator() *Validator { return &Validator{} }

func (v *Validator) Validate(ctx context.Context, parts []writer.Part) (*compliance.Report, error) {
	rep := compliance.NewReport(Standard)
	if len(parts) == 0 || parts[0].Path != ManifestName {
		rep.Error(CodeManifestMissing, "", "%s must be the first part", ManifestName)
	}

	index := map[string]bool{}
	for _, p := range parts {
		if index[p.Path] {
			rep.Error(CodeDuplicatePart, p.Path, "part name appears more than once")
		}
		index[p.Path] = true
		if p.Path != ManifestName && !validPartName(p.Path) {
			rep.Error(CodeBadPartName, p.Path, "invalid part name")
		}
	}

	types := checkManifest(rep, parts, index)
	for _, p := range parts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.Path == ManifestName {
			continue
		}
		if contentType(types, p.Path) == "" {
			rep.Error(CodeNoContentType, p.Path, "no Default or Override content type")
		}
		if p.Binary {
			continue
		}
		if err := compliance.WellFormed(p.Content); err != nil {
			rep.Error(CodeMalformed, p.Path, "not well-formed: %v", err)
			continue
		}
		if compliance.IsRels(p.Path) {
			checkRels(rep, p, index)
		}
	}
	return rep, nil
}

type contentTypes struct {
	defaults  map[string]string
	overrides map[string]string
}

func checkManifest(rep *compliance.Report, parts []writer.Part, index map[string]bool) contentTypes {
	types := contentTypes{defaults: map[string]string{}, overrides: map[string]string{}}
	var data []byte
	for _, p := range parts {
		if p.Path == ManifestName {
			data = p.Content
			break
		}
	}
	if data == nil {
		return types
	}
	var m manifest
	if err := xml.Unmarshal(data, &m); err != nil {
		rep.Error(CodeMalformed, ManifestName, "cannot decode manifest: %v", err)
		return types
	}
	for _, d := range m.Defaults {
		types.defaults[strings.ToLower(d.Extension)] = d.ContentType
	}
	for _, o := range m.Overrides {
		name := strings.TrimPrefix(o.PartName, "/")
		types.overrides[strings.ToLower(name)] = o.ContentType
		if !index[name] {
			rep.Warn(CodeDanglingOverride, ManifestName, "override for missing part /%s", name)
		}
	}
	return types
}

// contentType applies the override first, then the extension default.
func contentType(t contentTypes, name string) string {
	if ct, ok := t.overrides[strings.ToLower(name)]; ok {
		return ct
	}
	ext := strings.TrimPrefix(path.Ext(name), ".")
	return t.defaults[strings.ToLower(ext)]
}

func checkRels(rep *compliance.Report, p writer.Part, index map[string]bool) {
	source := compliance.SourceOf(p.Path)
	if source != "" && !index[source] {
		rep.Error(CodeOrphanRels, p.Path, "source part %s is missing", source)
	}
	rels, err := compliance.ParseRels(p.Content)
	if err != nil {
		rep.Error(CodeMalformed, p.Path, "cannot decode relationships: %v", err)
		return
	}
	ids := map[string]bool{}
	for _, r := range rels {
		if ids[r.ID] {
			rep.Error(CodeDuplicateRelID, p.Path, "relationship id %s repeated", r.ID)
		}
		ids[r.ID] = true
		if r.External() {
			continue
		}
		if target := compliance.ResolveTarget(source, r.Target); !index[target] {
			rep.Error(CodeDanglingTarget, p.Path, "%s targets missing part %s", r.ID, target)
		}
	}
}

// validPartName rejects empty segments, backslashes and segments ending in
// a dot.
func validPartName(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, `\`) {
		return false
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "" || strings.HasSuffix(seg, ".") {
			return false
		}
	}
	return true
}
