package css

import (
	"strings"
	"testing"
)

func TestParseString_RulesAndDeclarations(t *testing.T) {
	sheet, err := NewParser().ParseString(`
		/* headings */
		h1, h2 { font-size: 32px; font-weight: bold }
		p { margin: 0 0 12px 0; color: #333 !important; }
		@media print { p { color: black } }
		.page-break{height:212px}
	`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(sheet.Rules) != 3 {
		t.Fatalf("rules = %d, want 3", len(sheet.Rules))
	}

	h := sheet.Rules[0]
	if strings.Join(h.Selectors, "|") != "h1|h2" {
		t.Errorf("selectors = %v", h.Selectors)
	}
	if len(h.Declarations) != 2 || h.Declarations[1].Value != "bold" {
		t.Errorf("declarations = %+v", h.Declarations)
	}

	p := sheet.Rules[1]
	if !p.Declarations[1].Important || p.Declarations[1].Value != "#333" {
		t.Errorf("important declaration = %+v", p.Declarations[1])
	}
	if sheet.Rules[2].Selectors[0] != ".page-break" {
		t.Errorf("last selector = %q", sheet.Rules[2].Selectors[0])
	}
}

func TestParseString_Strict(t *testing.T) {
	if _, err := (&Parser{Strict: true}).ParseString("p { color: red"); err == nil {
		t.Fatal("expected error for missing brace")
	}
	sheet, err := NewParser().ParseString("p { color: red")
	if err != nil {
		t.Fatalf("lenient parse: %v", err)
	}
	if len(sheet.Rules) != 1 {
		t.Errorf("lenient rules = %d, want 1", len(sheet.Rules))
	}
}

func TestParseDeclarations_SkipsMalformed(t *testing.T) {
	decls := ParseDeclarations("Font-Size: 14px; bogus; : x; line-height:20px")
	if len(decls) != 2 {
		t.Fatalf("declarations = %+v", decls)
	}
	if decls[0].Property != "font-size" || decls[1].Value != "20px" {
		t.Errorf("unexpected %+v %+v", decls[0], decls[1])
	}
}

func TestStylesheet_Merge(t *testing.T) {
	a, _ := NewParser().ParseString("p { color: red }")
	b, _ := NewParser().ParseString("h1 { color: blue } li { margin: 0 }")
	a.Merge(b)
	a.Merge(nil)
	if len(a.Rules) != 3 {
		t.Errorf("merged rules = %d, want 3", len(a.Rules))
	}
}
