package css

import (
	"fmt"
	"io"
	"strings"
)

// Parser parses the small CSS subset used by editor stylesheets: rule sets
// with compound selectors and plain declarations. At-rules are skipped.
type Parser struct {
	// Strict makes malformed rules an error instead of skipping them.
	Strict bool
}

// Rule represents a CSS rule
type Rule struct {
	Selectors    []string
	Declarations []*Declaration
}

// Declaration represents a CSS declaration (property-value pair)
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Stylesheet represents a parsed CSS stylesheet
type Stylesheet struct {
	Rules []*Rule
}

// NewParser creates a new CSS parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses CSS from a string
func (p *Parser) ParseString(content string) (*Stylesheet, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse parses CSS from an io.Reader
func (p *Parser) Parse(r io.Reader) (*Stylesheet, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read stylesheet: %w", err)
	}

	sheet := &Stylesheet{}
	rest := stripComments(string(content))
	for {
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return sheet, nil
		}
		head, body, ok := strings.Cut(rest, "{")
		if !ok {
			if p.Strict {
				return nil, fmt.Errorf("css: unterminated rule %q", truncate(rest))
			}
			return sheet, nil
		}
		body, tail, ok := cutBlock(body)
		if !ok && p.Strict {
			return nil, fmt.Errorf("css: missing closing brace after %q", truncate(head))
		}
		rest = tail

		head = strings.TrimSpace(head)
		if strings.HasPrefix(head, "@") {
			continue
		}
		selectors := splitList(head)
		if len(selectors) == 0 {
			if p.Strict {
				return nil, fmt.Errorf("css: rule without selector")
			}
			continue
		}
		sheet.Rules = append(sheet.Rules, &Rule{
			Selectors:    selectors,
			Declarations: ParseDeclarations(body),
		})
	}
}

// ParseDeclarations parses a declaration block without braces, as found in a
// style attribute.
func ParseDeclarations(block string) []*Declaration {
	var out []*Declaration
	for _, part := range strings.Split(block, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if prop == "" || value == "" {
			continue
		}
		d := &Declaration{Property: prop, Value: value}
		if v, found := strings.CutSuffix(value, "!important"); found {
			d.Value = strings.TrimSpace(v)
			d.Important = true
		}
		out = append(out, d)
	}
	return out
}

// Merge appends the rules of other after those of s.
func (s *Stylesheet) Merge(other *Stylesheet) {
	if other == nil {
		return
	}
	s.Rules = append(s.Rules, other.Rules...)
}

// cutBlock splits s after the brace that closes an already opened block.
func cutBlock(s string) (body, rest string, ok bool) {
	depth := 1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i], s[i+1:], true
			}
		}
	}
	return s, "", false
}

func splitList(s string) []string {
	var out []string
	for _, sel := range strings.Split(s, ",") {
		if sel = strings.Join(strings.Fields(sel), " "); sel != "" {
			out = append(out, sel)
		}
	}
	return out
}

func stripComments(s string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, "/*")
		if start < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:start])
		end := strings.Index(s[start+2:], "*/")
		if end < 0 {
			return b.String()
		}
		s = s[start+2+end+2:]
	}
}

func truncate(s string) string {
	if len(s) > 32 {
		return s[:32] + "..."
	}
	return s
}
