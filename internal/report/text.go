package report

import "strings"

// renderText produces the plain-text form of the report.
func renderText(c content) []byte {
	var b strings.Builder
	b.WriteString(c.Title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", len(c.Title)))
	b.WriteString("\n")

	for _, sec := range c.Sections {
		b.WriteString("\n")
		b.WriteString(strings.ToUpper(sec.Heading))
		b.WriteString("\n")
		b.WriteString(strings.Repeat("-", len(sec.Heading)))
		b.WriteString("\n")
		for _, blk := range sec.Blocks {
			b.WriteString(blk.Text)
			b.WriteString("\n")
		}
	}
	return []byte(b.String())
}
