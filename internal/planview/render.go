package planview

import "strings"

// ViewKind is the semantic shape of a rendered block.
type ViewKind string

const (
	ViewHeading    ViewKind = "heading"
	ViewSubheading ViewKind = "subheading"
	ViewSection    ViewKind = "section"
	ViewParagraph  ViewKind = "paragraph"
	ViewList       ViewKind = "list"
)

// View describes how a block is presented, without styling.
type View struct {
	Kind     ViewKind `json:"kind"`
	Level    int      `json:"level,omitempty"`
	Text     string   `json:"text,omitempty"`
	Emphasis bool     `json:"emphasis,omitempty"`
	Title    string   `json:"title,omitempty"`
	Content  string   `json:"content,omitempty"`
	Ordered  bool     `json:"ordered,omitempty"`
	Items    []string `json:"items,omitempty"`
}

var bracketStripper = strings.NewReplacer("[", "", "]", "")

// Render maps a block to its view.
func Render(b Block) View {
	if b.IsList() {
		items := make([]string, len(b.Lines))
		for i, l := range b.Lines {
			items[i] = itemText(l)
		}
		return View{Kind: ViewList, Ordered: b.Ordered(), Items: items}
	}

	l := b.Lines[0]
	switch l.Kind {
	case KindTitle:
		return View{Kind: ViewHeading, Level: 2, Text: l.Text}
	case KindMenuLabel:
		return View{Kind: ViewParagraph, Text: l.Text, Emphasis: true}
	case KindRecipeSectionTitle:
		return View{Kind: ViewSubheading, Level: 3, Text: bracketStripper.Replace(l.Text)}
	case KindNamedSection:
		return View{Kind: ViewSection, Title: l.Title, Content: l.Content}
	default:
		return View{Kind: ViewParagraph, Text: l.Text}
	}
}

// RenderAll renders blocks in order.
func RenderAll(blocks []Block) []View {
	views := make([]View, len(blocks))
	for i, b := range blocks {
		views[i] = Render(b)
	}
	return views
}
