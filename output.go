package main

import (
	"encoding/json"
	"fmt"
	"io"
)

// formatOutput writes generated items. A single item in text mode is
// written as its bare text; several are separated by header blocks:
//
//	---
//	# Item 1
//	---
//
//	<text>
func formatOutput(w io.Writer, items []Item, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	if len(items) == 1 {
		_, err := io.WriteString(w, itemText(items[0]))
		return err
	}

	for i, item := range items {
		if _, err := fmt.Fprintf(w, "---\n# Item %d\n---\n\n%s\n", i+1, itemText(item)); err != nil {
			return err
		}
		if i < len(items)-1 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}
	return nil
}

func itemText(item Item) string {
	s, _ := item[textKey].(string)
	return s
}

// formatOptionTable lists the options that apply to format.
func formatOptionTable(w io.Writer, format Format, specs []optionSpec) {
	fmt.Fprintf(w, "Options for %s:\n\n", format)
	for _, s := range specs {
		domain := s.Kind.String()
		switch s.Kind {
		case kindEnum:
			domain = fmt.Sprintf("%v", s.Values)
		case kindInt:
			domain = fmt.Sprintf("%d-%d", s.Min, s.Max)
		}
		fmt.Fprintf(w, "  %-18s %-36s default %-10s %s\n", s.Name, domain, s.Default, s.Description)
	}
}
