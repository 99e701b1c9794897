package style

import (
	"strings"

	"github.com/gompdf/livepage/internal/parser/css"
	"github.com/gompdf/livepage/internal/parser/html"
)

// Specificity represents the specificity of a CSS selector
type Specificity struct {
	ID      int
	Class   int
	Element int
}

// StyleProperty represents a computed style property
type StyleProperty struct {
	Name        string
	Value       string
	Important   bool
	Source      Source
	Specificity Specificity
}

// Source represents the source of a style property
type Source int

const (
	SourceEditor Source = iota
	SourceAuthor
	SourceInline
)

// inherited lists the properties children take from their parent when they
// do not declare them.
var inherited = []string{
	"font-family", "font-size", "font-weight", "font-style",
	"line-height", "color", "text-align", "white-space",
}

// ComputedStyle represents the computed style for an element
type ComputedStyle map[string]StyleProperty

// StyleEngine handles the CSS cascade and style computation
type StyleEngine struct {
	editorStyles *css.Stylesheet
	authorStyles []*css.Stylesheet
}

// NewStyleEngine creates a style engine seeded with the editor stylesheet.
func NewStyleEngine() *StyleEngine {
	return &StyleEngine{editorStyles: EditorStylesheet()}
}

// AddStylesheet adds an author stylesheet to the style engine
func (e *StyleEngine) AddStylesheet(stylesheet *css.Stylesheet) {
	e.authorStyles = append(e.authorStyles, stylesheet)
}

// ComputeStyles computes styles for all elements in the document
func (e *StyleEngine) ComputeStyles(doc *html.Document) map[*html.Node]ComputedStyle {
	result := make(map[*html.Node]ComputedStyle)
	e.computeStylesRecursive(doc.Root, nil, result)
	return result
}

func (e *StyleEngine) computeStylesRecursive(node *html.Node, parent ComputedStyle, result map[*html.Node]ComputedStyle) {
	if node.IsElement() {
		st := e.computeStyleForElement(node)
		for _, name := range inherited {
			if _, ok := st[name]; !ok {
				if p, ok := parent[name]; ok {
					st[name] = p
				}
			}
		}
		result[node] = st
		parent = st
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		e.computeStylesRecursive(child, parent, result)
	}
}

// computeStyleForElement computes the style for a single element
func (e *StyleEngine) computeStyleForElement(node *html.Node) ComputedStyle {
	style := make(ComputedStyle)
	e.applyStylesheet(style, node, e.editorStyles, SourceEditor)
	for _, stylesheet := range e.authorStyles {
		e.applyStylesheet(style, node, stylesheet, SourceAuthor)
	}
	if v, ok := node.AttrValue("style"); ok {
		applyDeclarations(style, css.ParseDeclarations(v), Specificity{ID: 1}, SourceInline)
	}
	return style
}

// applyStylesheet applies styles from a stylesheet to an element
func (e *StyleEngine) applyStylesheet(style ComputedStyle, node *html.Node, stylesheet *css.Stylesheet, source Source) {
	for _, rule := range stylesheet.Rules {
		for _, selector := range rule.Selectors {
			if selectorMatches(node, selector) {
				applyDeclarations(style, rule.Declarations, calculateSpecificity(selector), source)
			}
		}
	}
}

// applyDeclarations applies CSS declarations to a style. A declaration wins
// over an existing one when it is important and the other is not, or when
// both have the same importance and it comes from a later source, or from
// the same source with at least the same specificity.
func applyDeclarations(style ComputedStyle, declarations []*css.Declaration, specificity Specificity, source Source) {
	for _, decl := range declarations {
		for _, lh := range expandShorthand(decl.Property, decl.Value) {
			name := lh[0]
			existing, exists := style[name]
			wins := !exists ||
				(decl.Important && !existing.Important) ||
				(decl.Important == existing.Important &&
					(source > existing.Source ||
						(source == existing.Source && compareSpecificity(specificity, existing.Specificity) >= 0)))
			if !wins {
				continue
			}
			style[name] = StyleProperty{
				Name:        name,
				Value:       lh[1],
				Important:   decl.Important,
				Source:      source,
				Specificity: specificity,
			}
		}
	}
}

// expandShorthand splits margin and padding shorthands into their four
// sides, so a later longhand can still override the side it names.
func expandShorthand(prop, value string) [][2]string {
	if prop != "margin" && prop != "padding" {
		return [][2]string{{prop, value}}
	}
	parts := strings.Fields(value)
	var t, r, b, l string
	switch len(parts) {
	case 0:
		return nil
	case 1:
		t, r, b, l = parts[0], parts[0], parts[0], parts[0]
	case 2:
		t, r, b, l = parts[0], parts[1], parts[0], parts[1]
	case 3:
		t, r, b, l = parts[0], parts[1], parts[2], parts[1]
	default:
		t, r, b, l = parts[0], parts[1], parts[2], parts[3]
	}
	return [][2]string{
		{prop + "-top", t}, {prop + "-right", r},
		{prop + "-bottom", b}, {prop + "-left", l},
	}
}

// selectorMatches checks if an element matches a descendant selector
func selectorMatches(node *html.Node, selector string) bool {
	parts := strings.Fields(selector)
	if len(parts) == 0 || !matchCompoundSelector(node, parts[len(parts)-1]) {
		return false
	}
	current := node.Parent
	for i := len(parts) - 2; i >= 0; i-- {
		found := false
		for anc := current; anc != nil; anc = anc.Parent {
			if matchCompoundSelector(anc, parts[i]) {
				found = true
				current = anc.Parent
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// matchCompoundSelector matches tag, #id and .class combinations such as
// "span.page-break" against a single element.
func matchCompoundSelector(node *html.Node, sel string) bool {
	if !node.IsElement() || sel == "" {
		return false
	}

	var wantTag, wantID string
	var wantClasses []string
	i := 0
	for i < len(sel) && sel[i] != '.' && sel[i] != '#' {
		i++
	}
	wantTag = sel[:i]
	for i < len(sel) {
		kind := sel[i]
		j := i + 1
		for j < len(sel) && sel[j] != '.' && sel[j] != '#' {
			j++
		}
		switch kind {
		case '#':
			wantID = sel[i+1 : j]
		case '.':
			wantClasses = append(wantClasses, sel[i+1:j])
		}
		i = j
	}
	if strings.ContainsAny(wantTag, "[:>+~") {
		return false
	}

	if wantTag != "" && wantTag != "*" && !strings.EqualFold(wantTag, node.Data) {
		return false
	}
	if wantID != "" {
		if id, ok := node.AttrValue("id"); !ok || id != wantID {
			return false
		}
	}
	for _, c := range wantClasses {
		if !node.HasClass(c) {
			return false
		}
	}
	return true
}

// calculateSpecificity calculates the specificity of a compound or
// descendant selector
func calculateSpecificity(selector string) Specificity {
	var s Specificity
	for _, part := range strings.Fields(selector) {
		s.ID += strings.Count(part, "#")
		s.Class += strings.Count(part, ".")
		if part[0] != '.' && part[0] != '#' && part[0] != '*' {
			s.Element++
		}
	}
	return s
}

// compareSpecificity compares two specificities
func compareSpecificity(a, b Specificity) int {
	if a.ID != b.ID {
		return a.ID - b.ID
	}
	if a.Class != b.Class {
		return a.Class - b.Class
	}
	return a.Element - b.Element
}

// EditorStylesheet returns the stylesheet the editor renders blocks with.
func EditorStylesheet() *css.Stylesheet {
	sheet, _ := css.NewParser().ParseString(editorCSS)
	return sheet
}

const editorCSS = `
body { font-family: Helvetica; font-size: 16px; line-height: 24px; color: #1a1a1a; }
p { margin: 0 0 12px 0; }
h1 { font-size: 32px; line-height: 40px; font-weight: bold; margin: 24px 0 12px 0; }
h2 { font-size: 24px; line-height: 32px; font-weight: bold; margin: 20px 0 10px 0; }
h3 { font-size: 20px; line-height: 28px; font-weight: bold; margin: 16px 0 8px 0; }
h4, h5, h6 { font-size: 16px; line-height: 24px; font-weight: bold; margin: 12px 0 6px 0; }
blockquote { margin: 0 0 12px 0; padding-left: 16px; border-left-width: 3px; font-style: italic; color: #555555; }
pre { font-family: Courier; font-size: 14px; line-height: 20px; margin: 0 0 12px 0; padding: 8px; background-color: #f5f5f5; white-space: pre-wrap; }
ul, ol { margin: 0 0 12px 0; padding-left: 24px; }
li { margin: 0 0 4px 0; }
`
