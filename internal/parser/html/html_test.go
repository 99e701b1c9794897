package html

import (
	"testing"
)

func TestParseString_BodyAndHelpers(t *testing.T) {
	doc, err := NewParser().ParseString(`<h1>Title</h1><p>one <span class="page-break x" data-pos="9"></span>two</p>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	body := doc.Body()
	if !body.IsElement("body") {
		t.Fatalf("body = %q", body.Data)
	}

	h1 := body.FirstChild
	if !h1.IsElement("h1", "h2") || h1.Text() != "Title" {
		t.Errorf("first child = %q %q", h1.Data, h1.Text())
	}

	p := h1.NextSibling
	if p.Text() != "one two" {
		t.Errorf("paragraph text = %q", p.Text())
	}
	span := p.FirstChild.NextSibling
	if !span.HasClass("page-break") || span.HasClass("page") {
		t.Errorf("class matching wrong for %v", span.Attr)
	}
	if v, ok := span.AttrValue("data-pos"); !ok || v != "9" {
		t.Errorf("data-pos = %q, %v", v, ok)
	}
	if span.Parent != p || span.PrevSibling != p.FirstChild {
		t.Error("parent/sibling links not set")
	}
}

func TestNode_IsElementOnText(t *testing.T) {
	doc, _ := NewParser().ParseString("<p>x</p>")
	text := doc.Body().FirstChild.FirstChild
	if text.IsElement() {
		t.Error("text node reported as element")
	}
	var nilNode *Node
	if nilNode.IsElement() {
		t.Error("nil node reported as element")
	}
}
