package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"

	"github.com/Comcast/corrcheck/core"
	"github.com/Comcast/corrcheck/loader"

	md "github.com/russross/blackfriday/v2"
)

// ReportMarkdown writes a Markdown summary of a check.
func ReportMarkdown(doc *loader.Document, r *core.Report) []byte {
	var buf bytes.Buffer
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(&buf, format+"\n", args...)
	}

	f("# %s", doc.Source)
	f("")
	f("Execution mode: `%s`", doc.Mode)
	f("")
	if r.Valid {
		f("**Valid**: every session can be identified by correlation.")
	} else {
		f("**Invalid**: %d problems.", len(r.Diagnostics))
		f("")
		for _, d := range r.Diagnostics {
			f("- `%s` %s", d.Kind, d.Error())
		}
	}
	f("")

	if doc.Correlation != nil && 0 < len(doc.Correlation.Sets) {
		f("## Correlation sets")
		f("")
		for _, s := range doc.Correlation.Sets {
			paths := s.Paths()
			f("- **%s**", s.Name)
			for _, p := range paths {
				f("  - `%s`", p)
			}
		}
		f("")
	}

	return buf.Bytes()
}

// RenderReportHTML writes the HTML for the report's body.
func RenderReportHTML(doc *loader.Document, r *core.Report, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="reportDoc doc">%s</div>`, md.Run(ReportMarkdown(doc, r)))

	f(`<div class="definitions"><table>`)
	for _, d := range r.Definitions {
		f(`<tr class="definition"><td><span id="%s" class="definitionName">%s</span></td><td>`,
			html.EscapeString(d.Name), html.EscapeString(d.Name))
		f(`<table>`)
		row := func(what string, paths []string) {
			if len(paths) == 0 {
				return
			}
			f(`<tr><td>%s</td><td>`, what)
			for _, p := range paths {
				f(`<code>%s</code> `, html.EscapeString(p))
			}
			f(`</td></tr>`)
		}
		row("provides", d.ProvidedCorr)
		row("fresh", d.FreshCorr)
		row("needs", d.NeededCorr)
		row("initializes", d.ProvidedVar)
		row("uses", d.NeededVar)
		row("invalidates", d.InvalidatedVar)
		f(`</table>`)
		f(`</td></tr>`)
	}
	f(`</table></div>`)

	return nil
}

// RenderReportPage writes a complete HTML page.
func RenderReportPage(doc *loader.Document, r *core.Report, out io.Writer, cssFiles []string) error {

	if cssFiles == nil {
		cssFiles = []string{"/static/report-html.css"}
	}

	js, err := json.Marshal(r)
	if err != nil {
		return err
	}

	title := html.EscapeString(doc.Source)

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
  <script>
  var thisReport = %s;
  </script>
`, title, js)

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
`)

	if err = RenderReportHTML(doc, r, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderReportPage loads a document, checks it, and renders
// the result.
func ReadAndRenderReportPage(ctx context.Context, ref string, cssFiles []string, out io.Writer) error {
	doc, err := loader.Load(ctx, ref)
	if err != nil {
		return err
	}
	return RenderReportPage(doc, doc.Check(), out, cssFiles)
}
