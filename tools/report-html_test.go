package tools

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderReportPage(t *testing.T) {
	doc := shop(t)
	r := doc.Check()

	var buf bytes.Buffer
	if err := RenderReportPage(doc, r, &buf, nil); err != nil {
		t.Fatal(err)
	}

	page := buf.String()
	for _, want := range []string{
		"<title>shop.ol</title>",
		"<strong>Invalid</strong>",
		"NoFreshCorrelationValue",
		`<span id="mint" class="definitionName">mint</span>`,
		"/static/report-html.css",
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("missing %s", want)
		}
	}
}
