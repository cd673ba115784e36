package writer

import (
	"fmt"
	"time"

	"github.com/wudi/pptxkit/ir/semantic"
	"github.com/wudi/pptxkit/units"
)

const (
	nsA        = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsP        = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsPkgRels  = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsTypes    = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsP14      = "http://schemas.microsoft.com/office/powerpoint/2010/main"
	nsP15      = "http://schemas.microsoft.com/office/powerpoint/2012/main"
	relBase    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"
	ctBase     = "application/vnd.openxmlformats-officedocument."
	ctPML      = ctBase + "presentationml."
	masterID   = 2147483648
	firstSldID = 256

	tableStyleDefault = "{5C22544A-7EE6-4342-B048-85BDC9FD1C3A}"
)

// pml opens a PresentationML root element with the a/r/p namespaces.
func pml(name string) *Node {
	return El(name).Set("xmlns:a", nsA).Set("xmlns:r", nsR).Set("xmlns:p", nsP)
}

func relationship(id int, typ, target string) *Node {
	return El("Relationship").
		Set("Id", fmt.Sprintf("rId%d", id)).
		Set("Type", typ).
		Set("Target", target)
}

func relationships(rels ...*Node) *Node {
	return El("Relationships", rels...).Set("xmlns", nsPkgRels)
}

func override(part, contentType string) *Node {
	return El("Override").Set("PartName", part).Set("ContentType", contentType)
}

// contentTypes lists every part. Each slide brings a master, a layout and a
// slide override numbered with the slide.
func contentTypes(p *semantic.Presentation) *Node {
	root := El("Types").Set("xmlns", nsTypes).Add(
		El("Default").Set("Extension", "rels").Set("ContentType", "application/vnd.openxmlformats-package.relationships+xml"),
		El("Default").Set("Extension", "xml").Set("ContentType", "application/xml"),
		El("Default").Set("Extension", "jpeg").Set("ContentType", "image/jpeg"),
		El("Default").Set("Extension", "png").Set("ContentType", "image/png"),
	)
	for _, ext := range extraMediaExtensions(p) {
		root.Add(El("Default").Set("Extension", ext).Set("ContentType", "image/"+ext))
	}
	root.Add(
		override("/docProps/app.xml", ctBase+"extended-properties+xml"),
		override("/ppt/theme/theme1.xml", ctBase+"theme+xml"),
		override("/docProps/core.xml", "application/vnd.openxmlformats-package.core-properties+xml"),
		override("/ppt/presProps.xml", ctPML+"presProps+xml"),
		override("/ppt/presentation.xml", ctPML+"presentation.main+xml"),
		override("/ppt/tableStyles.xml", ctPML+"tableStyles+xml"),
		override("/ppt/viewProps.xml", ctPML+"viewProps+xml"),
	)
	for i := range p.Slides {
		n := i + 1
		root.Add(
			override(fmt.Sprintf("/ppt/slideMasters/slideMaster%d.xml", n), ctPML+"slideMaster+xml"),
			override(fmt.Sprintf("/ppt/slideLayouts/slideLayout%d.xml", n), ctPML+"slideLayout+xml"),
			override(fmt.Sprintf("/ppt/slides/slide%d.xml", n), ctPML+"slide+xml"),
		)
	}
	return root
}

// extraMediaExtensions returns media extensions beyond png and jpeg, in first-seen order.
func extraMediaExtensions(p *semantic.Presentation) []string {
	seen := map[string]bool{"png": true, "jpeg": true}
	var out []string
	for _, r := range p.Relationships() {
		if !seen[r.Extension] {
			seen[r.Extension] = true
			out = append(out, r.Extension)
		}
	}
	return out
}

func rootRels() *Node {
	return relationships(
		relationship(1, relBase+"extended-properties", "docProps/app.xml"),
		relationship(2, "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties", "docProps/core.xml"),
		relationship(3, relBase+"officeDocument", "ppt/presentation.xml"),
	)
}

func presentationFormat(l units.Layout) string {
	switch l.Name {
	case units.Layout4x3:
		return "On-screen Show (4:3)"
	case units.Layout16x10:
		return "On-screen Show (16:10)"
	case units.LayoutWide:
		return "Widescreen"
	}
	return "On-screen Show (16:9)"
}

func appProps(p *semantic.Presentation, cfg Config) *Node {
	n := len(p.Slides)
	variant := func(child *Node) *Node { return El("vt:variant", child) }
	titles := El("vt:vector").Set("size", n+1).Set("baseType", "lpstr").Add(TextEl("vt:lpstr", "Office Theme"))
	for i := range p.Slides {
		titles.Add(TextEl("vt:lpstr", fmt.Sprintf("Slide %d", i+1)))
	}
	return El("Properties").
		Set("xmlns", "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties").
		Set("xmlns:vt", "http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes").
		Add(
			TextEl("TotalTime", "0"),
			TextEl("Words", "0"),
			TextEl("Application", cfg.Application),
			TextEl("PresentationFormat", presentationFormat(p.Layout)),
			TextEl("Paragraphs", "0"),
			TextEl("Slides", fmt.Sprint(n)),
			TextEl("Notes", "0"),
			TextEl("HiddenSlides", "0"),
			TextEl("MMClips", "0"),
			TextEl("ScaleCrop", "false"),
			El("HeadingPairs", El("vt:vector").Set("size", 4).Set("baseType", "variant").Add(
				variant(TextEl("vt:lpstr", "Theme")),
				variant(TextEl("vt:i4", "1")),
				variant(TextEl("vt:lpstr", "Slide Titles")),
				variant(TextEl("vt:i4", fmt.Sprint(n))),
			)),
			El("TitlesOfParts", titles),
			TextEl("Company", p.Company),
			TextEl("LinksUpToDate", "false"),
			TextEl("SharedDoc", "false"),
			TextEl("HyperlinksChanged", "false"),
			TextEl("AppVersion", cfg.AppVersion),
		)
}

func w3cdtf(t time.Time) string { return t.UTC().Format("2006-01-02T15:04:05Z") }

func coreProps(p *semantic.Presentation, created, modified time.Time) *Node {
	revision := p.Revision
	if revision < 1 {
		revision = 1
	}
	stamp := func(name string, t time.Time) *Node {
		return TextEl(name, w3cdtf(t)).Set("xsi:type", "dcterms:W3CDTF")
	}
	return El("cp:coreProperties").
		Set("xmlns:cp", "http://schemas.openxmlformats.org/package/2006/metadata/core-properties").
		Set("xmlns:dc", "http://purl.org/dc/elements/1.1/").
		Set("xmlns:dcterms", "http://purl.org/dc/terms/").
		Set("xmlns:dcmitype", "http://purl.org/dc/dcmitype/").
		Set("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance").
		Add(
			TextEl("dc:title", p.Title),
			subjectNode(p.Subject),
			TextEl("dc:creator", p.Author),
			TextEl("cp:lastModifiedBy", p.Author),
			TextEl("cp:revision", fmt.Sprint(revision)),
			stamp("dcterms:created", created),
			stamp("dcterms:modified", modified),
		)
}

func subjectNode(subject string) *Node {
	if subject == "" {
		return nil
	}
	return TextEl("dc:subject", subject)
}

// presentationRels: master first, then slides, then the four ppt-level parts.
func presentationRels(p *semantic.Presentation) *Node {
	root := relationships(relationship(1, relBase+"slideMaster", "slideMasters/slideMaster1.xml"))
	id := 1
	for i := range p.Slides {
		id++
		root.Add(relationship(id, relBase+"slide", fmt.Sprintf("slides/slide%d.xml", i+1)))
	}
	root.Add(
		relationship(id+1, relBase+"presProps", "presProps.xml"),
		relationship(id+2, relBase+"viewProps", "viewProps.xml"),
		relationship(id+3, relBase+"theme", "theme/theme1.xml"),
		relationship(id+4, relBase+"tableStyles", "tableStyles.xml"),
	)
	return root
}

func slideLayout() *Node {
	return pml("p:sldLayout").Set("type", "title").Set("preserve", "1").Add(Raw(layoutBodyMarkup))
}

func slideLayoutRels() *Node {
	return relationships(relationship(1, relBase+"slideMaster", "../slideMasters/slideMaster1.xml"))
}

// slideRels: rId1 is the layout; image relationships follow with their own ids.
func slideRels(s *semantic.Slide) *Node {
	root := relationships(relationship(1, relBase+"slideLayout", fmt.Sprintf("../slideLayouts/slideLayout%d.xml", s.Index)))
	for _, r := range s.Rels {
		root.Add(relationship(r.ID, relBase+"image", r.Target()))
	}
	return root
}

func slideMaster(layouts int) *Node {
	ids := El("p:sldLayoutIdLst")
	for i := 0; i < layouts; i++ {
		ids.Add(El("p:sldLayoutId").Set("id", int64(masterID+1+i)).Set("r:id", fmt.Sprintf("rId%d", i+1)))
	}
	return pml("p:sldMaster").Add(Raw(masterCSldMarkup), ids, Raw(masterTxStylesMarkup))
}

func slideMasterRels(layouts int) *Node {
	root := relationships()
	for i := 1; i <= layouts; i++ {
		root.Add(relationship(i, relBase+"slideLayout", fmt.Sprintf("../slideLayouts/slideLayout%d.xml", i)))
	}
	return root.Add(relationship(layouts+1, relBase+"theme", "../theme/theme1.xml"))
}

func presentation(p *semantic.Presentation) *Node {
	slides := El("p:sldIdLst")
	for i := range p.Slides {
		slides.Add(El("p:sldId").Set("id", firstSldID+i).Set("r:id", fmt.Sprintf("rId%d", i+2)))
	}
	textStyle := El("p:defaultTextStyle")
	for lvl := 1; lvl <= 9; lvl++ {
		textStyle.Add(El(fmt.Sprintf("a:lvl%dpPr", lvl)).
			Set("marL", (lvl-1)*457200).
			Set("algn", "l").
			Set("defTabSz", "914400").
			Set("rtl", "0").
			Set("eaLnBrk", "1").
			Set("latinLnBrk", "0").
			Set("hangingPunct", "1").
			Add(El("a:defRPr").Set("sz", "1800").Set("kern", "1200").Add(
				El("a:solidFill", El("a:schemeClr").Set("val", "tx1")),
				El("a:latin").Set("typeface", "+mn-lt"),
				El("a:ea").Set("typeface", "+mn-ea"),
				El("a:cs").Set("typeface", "+mn-cs"),
			)))
	}
	return pml("p:presentation").Set("saveSubsetFonts", "1").Add(
		El("p:sldMasterIdLst", El("p:sldMasterId").Set("id", int64(masterID)).Set("r:id", "rId1")),
		slides,
		El("p:sldSz").Set("cx", p.Layout.Width).Set("cy", p.Layout.Height).Set("type", p.Layout.Type),
		El("p:notesSz").Set("cx", p.Layout.Height).Set("cy", p.Layout.Width),
		textStyle,
		El("p:extLst", El("p:ext").Set("uri", "{EFAFB233-063F-42B5-8137-9DF3F51BA10A}").Add(
			El("p15:sldGuideLst").Set("xmlns:p15", nsP15),
		)),
	)
}

func presProps() *Node {
	ext := func(uri, name, ns, val string) *Node {
		return El("p:ext", El(name).Set("xmlns:"+name[:3], ns).Set("val", val)).Set("uri", uri)
	}
	return pml("p:presentationPr").Add(El("p:extLst",
		ext("{E76CE94A-603C-4142-B9EB-6D1370010A27}", "p14:discardImageEditData", nsP14, "0"),
		ext("{D31A062A-798A-4329-ABDD-BBA856620510}", "p14:defaultImageDpi", nsP14, "220"),
		ext("{FD5EFAAD-0ECE-453E-9831-46B23BE46B34}", "p15:chartTrackingRefBased", nsP15, "1"),
	))
}

func tableStyles() *Node {
	return El("a:tblStyleLst").Set("xmlns:a", nsA).Set("def", tableStyleDefault)
}

func viewProps() *Node {
	scale := func(n int) *Node {
		return El("p:scale",
			El("a:sx").Set("n", n).Set("d", 100),
			El("a:sy").Set("n", n).Set("d", 100),
		)
	}
	return pml("p:viewPr").Add(
		El("p:normalViewPr",
			El("p:restoredLeft").Set("sz", "15620"),
			El("p:restoredTop").Set("sz", "94660"),
		),
		El("p:slideViewPr", El("p:cSldViewPr",
			El("p:cViewPr", scale(64), El("p:origin").Set("x", -1392).Set("y", -96)).Set("varScale", "1"),
			El("p:guideLst",
				El("p:guide").Set("orient", "horz").Set("pos", 2160),
				El("p:guide").Set("pos", 2880),
			),
		)),
		El("p:notesTextViewPr", El("p:cViewPr", scale(100), El("p:origin").Set("x", 0).Set("y", 0))),
		El("p:gridSpacing").Set("cx", "78028800").Set("cy", "78028800"),
	)
}

func theme() *Node { return Raw(themeMarkup) }
