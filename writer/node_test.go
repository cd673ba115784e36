package writer

import (
	"strings"
	"testing"
)

func TestNodeEscapesOnce(t *testing.T) {
	n := El("a:r", TextEl("a:t", `Q&A <"x">`)).Set("descr", "a&b")
	got := n.String()
	want := `<a:r descr="a&amp;b"><a:t>Q&amp;A &lt;&quot;x&quot;&gt;</a:t></a:r>`
	if got != want {
		t.Fatalf("got %s\nwant %s", got, want)
	}
	if strings.Contains(got, "&amp;amp;") {
		t.Fatalf("text escaped twice: %s", got)
	}
}

func TestNodeSelfClosesAndKeepsAttrOrder(t *testing.T) {
	n := El("a:off").Set("x", int64(10)).Set("y", 2.5).SetIf(false, "z", 1).Set("flag", true)
	if got := n.String(); got != `<a:off x="10" y="2.5" flag="1"/>` {
		t.Fatalf("unexpected markup %s", got)
	}
	if v, ok := n.Attr("y"); !ok || v != "2.5" {
		t.Fatalf("Attr(y) = %q, %v", v, ok)
	}
}

func TestNodeEmptyTextIsNotSelfClosed(t *testing.T) {
	if got := TextEl("a:t", "").String(); got != "<a:t></a:t>" {
		t.Fatalf("got %s", got)
	}
}

func TestNodeFind(t *testing.T) {
	root := El("p:sp", El("p:spPr", El("a:xfrm")), El("p:txBody", El("a:p"), El("a:p")))
	if root.Find("a:xfrm") == nil {
		t.Fatalf("Find missed a:xfrm")
	}
	if n := len(root.FindAll("a:p")); n != 2 {
		t.Fatalf("FindAll = %d", n)
	}
	var missing *Node
	if missing.Find("x") != nil {
		t.Fatalf("nil receiver should find nothing")
	}
}

func TestDocumentHeader(t *testing.T) {
	out := string(Document(El("Types")))
	if !strings.HasPrefix(out, XMLHeader) || !strings.HasSuffix(out, "<Types/>") {
		t.Fatalf("unexpected document %q", out)
	}
}

func TestRawIsVerbatim(t *testing.T) {
	n := El("p:sldMaster", Raw("<p:cSld>&amp;</p:cSld>"))
	if got := n.String(); got != "<p:sldMaster><p:cSld>&amp;</p:cSld></p:sldMaster>" {
		t.Fatalf("got %s", got)
	}
}
