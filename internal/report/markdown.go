package report

import (
	"io"

	"github.com/nao1215/markdown"
	"github.com/rotisserie/eris"
)

// MarkdownWriter renders the BOM as GitHub flavored markdown with one table
// per designator group.
type MarkdownWriter struct{}

func (MarkdownWriter) Ext() string { return "md" }

func (MarkdownWriter) Write(w io.Writer, doc Document) error {
	md := markdown.NewMarkdown(w)

	title := doc.Header.Title
	if title == "" {
		title = "Bill of Materials"
	}
	md.H1(title)
	md.PlainText("")

	info := make([][]string, 0, 5)
	for _, r := range headerRows(doc.Header) {
		info = append(info, []string{r[0], r[1]})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   info,
	})
	md.PlainText("")

	writeMarkdownSections(md, Sections(doc.Groups, doc.Defaults), false)
	if len(doc.NoFit) > 0 {
		md.H2("Not fitted")
		md.PlainText("")
		writeMarkdownSections(md, Sections(doc.NoFit, doc.Defaults), true)
	}

	if err := md.Build(); err != nil {
		return eris.Wrap(err, "report: write markdown")
	}
	return nil
}

func writeMarkdownSections(md *markdown.Markdown, sections []Section, nested bool) {
	for _, s := range sections {
		if nested {
			md.H3(s.Title)
		} else {
			md.H2(s.Title)
		}
		md.PlainText("")
		if s.Subtitle != "" {
			md.PlainText(markdown.Italic(s.Subtitle))
			md.PlainText("")
		}
		md.Table(markdown.TableSet{
			Header: Columns,
			Rows:   s.Rows,
		})
		md.PlainText("")
	}
}
