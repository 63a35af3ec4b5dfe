package report

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

const wmlNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// renderDocx assembles a minimal WordprocessingML package: the content
// types part, the package relationships, and a single document part
// generated from the report content.
func renderDocx(c content) ([]byte, error) {
	var output bytes.Buffer
	writer := zip.NewWriter(&output)

	parts := []struct {
		name string
		data string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", documentXML(c)},
	}
	for _, part := range parts {
		dst, err := writer.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", part.name, err)
		}
		if _, err := dst.Write([]byte(part.data)); err != nil {
			return nil, fmt.Errorf("write %s: %w", part.name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize docx: %w", err)
	}
	return output.Bytes(), nil
}

func documentXML(c content) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString("\n")
	b.WriteString(`<w:document xmlns:w="` + wmlNamespace + `"><w:body>`)

	writeParagraph(&b, c.Title, runProps{Bold: true, HalfPoints: 32})
	for _, sec := range c.Sections {
		writeParagraph(&b, sec.Heading, runProps{Bold: true, HalfPoints: 26})
		for _, blk := range sec.Blocks {
			writeParagraph(&b, blk.Text, runProps{Color: blk.Color})
		}
	}

	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

type runProps struct {
	Bold       bool
	Color      string
	HalfPoints int
}

func writeParagraph(b *strings.Builder, text string, props runProps) {
	b.WriteString(`<w:p><w:r>`)
	if props.Bold || props.Color != "" || props.HalfPoints > 0 {
		b.WriteString(`<w:rPr>`)
		if props.Bold {
			b.WriteString(`<w:b/>`)
		}
		if props.Color != "" {
			fmt.Fprintf(b, `<w:color w:val=%q/>`, props.Color)
		}
		if props.HalfPoints > 0 {
			fmt.Fprintf(b, `<w:sz w:val="%d"/>`, props.HalfPoints)
		}
		b.WriteString(`</w:rPr>`)
	}
	b.WriteString(`<w:t xml:space="preserve">`)
	b.WriteString(escapeXML(text))
	b.WriteString(`</w:t></w:r></w:p>`)
}

func escapeXML(s string) string {
	var b bytes.Buffer
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return ""
	}
	return b.String()
}
