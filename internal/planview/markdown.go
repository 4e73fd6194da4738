package planview

import (
	"fmt"
	"strings"
)

// Markdown renders a parsed plan as CommonMark, for terminal previews.
func Markdown(r Result) string {
	var sb strings.Builder
	if len(r.Allergens) > 0 {
		sb.WriteString("> **알레르기 주의 정보:** ")
		sb.WriteString(strings.Join(r.Allergens, ", "))
		sb.WriteString("\n\n")
	}

	for _, v := range r.Views {
		switch v.Kind {
		case ViewHeading:
			fmt.Fprintf(&sb, "%s %s\n\n", strings.Repeat("#", v.Level), v.Text)
		case ViewSubheading:
			fmt.Fprintf(&sb, "---\n\n%s %s\n\n", strings.Repeat("#", v.Level), v.Text)
		case ViewSection:
			fmt.Fprintf(&sb, "#### %s\n\n", v.Title)
			if v.Content != "" {
				fmt.Fprintf(&sb, "%s\n\n", v.Content)
			}
		case ViewList:
			for i, item := range v.Items {
				if v.Ordered {
					fmt.Fprintf(&sb, "%d. %s\n", i+1, item)
				} else {
					fmt.Fprintf(&sb, "- %s\n", item)
				}
			}
			sb.WriteString("\n")
		default:
			if v.Emphasis {
				fmt.Fprintf(&sb, "**%s**\n\n", v.Text)
			} else {
				fmt.Fprintf(&sb, "%s\n\n", v.Text)
			}
		}
	}
	return sb.String()
}
