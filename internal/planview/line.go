package planview

import (
	"strings"
	"unicode"
)

// LineKind is the structural role of a single line of plan text.
type LineKind int

const (
	KindPlain LineKind = iota
	KindTitle
	KindMenuLabel
	KindRecipeSectionTitle
	KindNamedSection
	KindUnorderedItem
	KindOrderedItem
)

func (k LineKind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindMenuLabel:
		return "menu_label"
	case KindRecipeSectionTitle:
		return "recipe_section_title"
	case KindNamedSection:
		return "named_section"
	case KindUnorderedItem:
		return "unordered_item"
	case KindOrderedItem:
		return "ordered_item"
	default:
		return "plain"
	}
}

// IsListItem reports whether the kind is one of the two list-item kinds.
func (k LineKind) IsListItem() bool {
	return k == KindUnorderedItem || k == KindOrderedItem
}

// Line is one trimmed, non-empty line of plan text with its classification.
// Title and Content are only set for KindNamedSection.
type Line struct {
	Text    string
	Kind    LineKind
	Title   string
	Content string
}

type classifyRule struct {
	kind  LineKind
	match func(string) bool
}

// classifyRules is evaluated in order and the first match wins. List markers
// come last so that "1. foo" and "- foo" are never taken by an emoji rule.
var classifyRules = []classifyRule{
	{KindTitle, func(s string) bool { return strings.HasPrefix(s, TitleMarker) }},
	{KindMenuLabel, func(s string) bool { return hasAnyPrefix(s, MenuLabelMarkers...) }},
	{KindRecipeSectionTitle, func(s string) bool { return strings.HasPrefix(s, RecipeSectionMarker) }},
	{KindNamedSection, func(s string) bool { return hasAnyPrefix(s, NamedSectionMarkers...) }},
	{KindUnorderedItem, func(s string) bool { return strings.HasPrefix(s, UnorderedItemMarker) }},
	{KindOrderedItem, orderedItemPattern.MatchString},
}

// Classify assigns a LineKind to a trimmed line. It never fails: a line that
// matches no marker is KindPlain.
func Classify(text string) Line {
	line := Line{Text: text, Kind: KindPlain}
	for _, rule := range classifyRules {
		if rule.match(text) {
			line.Kind = rule.kind
			break
		}
	}
	if line.Kind == KindNamedSection {
		line.Title, line.Content = splitSection(text)
	}
	return line
}

// splitSection splits on the first colon only; later colons stay in content.
func splitSection(text string) (string, string) {
	title, content, found := strings.Cut(text, ":")
	if !found {
		return strings.TrimSpace(text), ""
	}
	return strings.TrimSpace(title), strings.TrimSpace(content)
}

// SplitLines breaks text into trimmed, non-empty, classified lines in input
// order.
func SplitLines(text string) []Line {
	raw := strings.Split(text, "\n")
	lines := make([]Line, 0, len(raw))
	for _, r := range raw {
		t := strings.TrimFunc(r, isTrimmable)
		if t == "" {
			continue
		}
		lines = append(lines, Classify(t))
	}
	return lines
}

// isTrimmable also covers the byte-order mark that editors put in front of
// saved plans.
func isTrimmable(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// itemText strips the list marker from a list item line.
func itemText(l Line) string {
	switch l.Kind {
	case KindUnorderedItem:
		return strings.TrimPrefix(l.Text, UnorderedItemMarker)
	case KindOrderedItem:
		return orderedItemPattern.ReplaceAllString(l.Text, "")
	default:
		return l.Text
	}
}
