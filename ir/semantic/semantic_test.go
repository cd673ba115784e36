package semantic

import "testing"

func TestFrameRot(t *testing.T) {
	cases := map[float64]int64{0: 0, 45: 2700000, 360: 21600000, 370: 600000}
	for deg, want := range cases {
		if got := (Frame{Rotate: deg}).Rot(); got != want {
			t.Fatalf("Rot(%v) = %d, want %d", deg, got, want)
		}
	}
}

func TestRelationshipPaths(t *testing.T) {
	r := &Relationship{ID: 3, MediaIndex: 7, Extension: "jpeg"}
	if r.RID() != "rId3" {
		t.Fatalf("RID = %s", r.RID())
	}
	if r.Target() != "../media/image7.jpeg" || r.PartName() != "ppt/media/image7.jpeg" {
		t.Fatalf("unexpected paths %s %s", r.Target(), r.PartName())
	}
	if r.ContentType() != "image/jpeg" {
		t.Fatalf("content type = %s", r.ContentType())
	}
}

func TestPresentationPending(t *testing.T) {
	done := &Relationship{ID: 2, MediaIndex: 1, Extension: "png", Data: []byte{1}}
	waiting := &Relationship{ID: 2, MediaIndex: 2, Extension: "png", Path: "a.png"}
	p := &Presentation{Slides: []*Slide{
		{Index: 1, Rels: []*Relationship{done}},
		{Index: 2, Rels: []*Relationship{waiting}},
	}}
	if p.MediaCount() != 2 {
		t.Fatalf("MediaCount = %d", p.MediaCount())
	}
	pending := p.Pending()
	if len(pending) != 1 || pending[0] != waiting {
		t.Fatalf("unexpected pending set %+v", pending)
	}
	if p.Slides[0].NextRelID() != 3 {
		t.Fatalf("NextRelID = %d", p.Slides[0].NextRelID())
	}
}

func TestSlideTables(t *testing.T) {
	s := &Slide{Shapes: []Shape{&TextShape{}, &Table{}, &Picture{}, &Table{}}}
	if n := len(s.Tables()); n != 2 {
		t.Fatalf("expected 2 tables, got %d", n)
	}
	if s.Shapes[0].Kind() != KindText || s.Shapes[2].Kind() != KindPicture {
		t.Fatalf("unexpected kinds")
	}
}

func TestApplyNaturalSizes(t *testing.T) {
	rel := &Relationship{ID: 2, MediaIndex: 1, Extension: "png", Data: []byte{1}, Width: 200, Height: 100}
	auto := &Picture{Frame: Frame{CX: 914400, CY: 914400}, Rel: rel, AutoSize: true}
	fixed := &Picture{Frame: Frame{CX: 5, CY: 5}, Rel: rel}
	p := &Presentation{Slides: []*Slide{{Index: 1, Shapes: []Shape{auto, fixed}, Rels: []*Relationship{rel}}}}

	if n := p.ApplyNaturalSizes(); n != 1 {
		t.Fatalf("resized %d pictures", n)
	}
	if auto.Frame.CX != 200*9525 || auto.Frame.CY != 100*9525 {
		t.Fatalf("auto frame = %+v", auto.Frame)
	}
	if fixed.Frame.CX != 5 {
		t.Fatalf("fixed picture changed")
	}
}
