package changelog

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InsertSection places a rendered release section into an existing changelog
// document, immediately before the previous release's level-2 heading so the
// newest release stays on top. Without any level-2 heading the section is
// appended at the end.
func InsertSection(doc []byte, section string) []byte {
	insertAt := len(doc)
	if at, ok := firstH2Offset(doc); ok {
		insertAt = at
	}

	var out bytes.Buffer
	out.Write(doc[:insertAt])
	if insertAt > 0 && !bytes.HasSuffix(doc[:insertAt], []byte("\n\n")) {
		if !bytes.HasSuffix(doc[:insertAt], []byte("\n")) {
			out.WriteByte('\n')
		}
		out.WriteByte('\n')
	}
	out.WriteString(section)
	out.WriteByte('\n')
	out.Write(doc[insertAt:])
	return out.Bytes()
}

// firstH2Offset parses the document and returns the byte offset of the line
// holding the first level-2 heading.
func firstH2Offset(doc []byte) (int, bool) {
	root := goldmark.New().Parser().Parse(text.NewReader(doc))
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		heading, ok := node.(*ast.Heading)
		if !ok || heading.Level != 2 || heading.Lines().Len() == 0 {
			continue
		}
		seg := heading.Lines().At(0)
		// The segment starts after the "## " marker; rewind to line start.
		lineStart := bytes.LastIndexByte(doc[:seg.Start], '\n') + 1
		return lineStart, true
	}
	return 0, false
}
