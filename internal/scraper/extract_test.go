package scraper

import (
	"strings"
	"testing"
)

func TestExtractTextOrdersSections(t *testing.T) {
	page := `<!doctype html>
<html>
<head><title>ignored</title><style>body { color: red }</style></head>
<body>
  <header><h1>Site Banner</h1></header>
  <nav><ul><li>Home</li><li>About</li></ul></nav>
  <article>
    <p>Start with a warm-up.</p>
    <h2>Upper Body   Day</h2>
    <ul><li>Bench press 3x8</li><li>  Rows
      3x10 </li></ul>
    <h1>Push Pull Legs</h1>
    <p>Rest 90 seconds.</p>
    <script>var tracking = true;</script>
  </article>
  <footer><p>Copyright</p></footer>
</body>
</html>`

	got, err := ExtractText(strings.NewReader(page))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	want := "Upper Body Day Push Pull Legs Start with a warm-up. Rest 90 seconds. Bench press 3x8 Rows 3x10"
	if got != want {
		t.Fatalf("unexpected text\n got: %q\nwant: %q", got, want)
	}
}

func TestExtractTextDropsScriptsAndFrames(t *testing.T) {
	page := `<p>Keep<script>drop()</script> this</p><noscript><p>js off</p></noscript><iframe src="x"></iframe>`
	got, err := ExtractText(strings.NewReader(page))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if got != "Keep this" {
		t.Fatalf("expected %q, got %q", "Keep this", got)
	}
}

func TestExtractTextEmptyDocument(t *testing.T) {
	got, err := ExtractText(strings.NewReader(`<div>no content selectors</div>`))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}
