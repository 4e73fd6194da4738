package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"school-meal-planner/internal/planner"
	"school-meal-planner/internal/planview"

	"github.com/charmbracelet/glamour"
)

const wordWrap = 100

// renderPlan parses text and writes a styled terminal preview.
func renderPlan(w io.Writer, text, style string) error {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(wordWrap)}
	if style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := tr.Render(planview.Markdown(planview.Parse(text)))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

type jsonResult struct {
	planview.Result
	LookupOffered bool `json:"lookupOffered"`
}

func parseForJSON(text string) jsonResult {
	r := planview.Parse(text)
	return jsonResult{Result: r, LookupOffered: r.OffersIngredientLookup()}
}

func printIngredients(w io.Writer, info []planner.IngredientInfo) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "재료\t예상 가격\t수급 현황\t비고")
	fmt.Fprintln(tw, strings.Repeat("-", 4)+"\t"+strings.Repeat("-", 5)+"\t"+strings.Repeat("-", 5)+"\t"+strings.Repeat("-", 2))
	for _, i := range info {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", i.Name, i.Price, i.Status, i.Notes)
	}
	tw.Flush()
}
