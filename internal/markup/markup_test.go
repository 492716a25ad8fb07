package markup

import (
	"reflect"
	"testing"
)

const page = `<!DOCTYPE html>
<html>
<head>
	<title>  Go Night
	  | Example </title>
	<meta property="og:image" content=" https://example.com/cover.png ">
	<script type="application/ld+json">{"@type":"Event"}</script>
	<script type="text/javascript">var x = 1;</script>
	<script type="Application/LD+JSON">[]</script>
</head>
<body>
	<h1>   Go   Night  </h1>
	<ul class="tags">
		<li class="tag">go</li>
		<li class="tag">   </li>
		<li class="tag">meetup</li>
	</ul>
</body>
</html>`

func mustParse(t *testing.T, html string) *Document {
	t.Helper()
	doc, err := Parse([]byte(html))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func TestDocument_Text(t *testing.T) {
	doc := mustParse(t, page)

	tests := []struct {
		selector string
		want     string
	}{
		{"h1", "Go Night"},
		{"title", "Go Night | Example"},
		{".tag", "go"},
		{".missing", ""},
		{"h1[", ""}, // invalid selector is a miss
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			if got := doc.Text(tt.selector); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.selector, got, tt.want)
			}
		})
	}
}

func TestDocument_Attr(t *testing.T) {
	doc := mustParse(t, page)

	if got := doc.Attr(`meta[property="og:image"]`, "content"); got != "https://example.com/cover.png" {
		t.Errorf("Attr(og:image) = %q", got)
	}
	if got := doc.Attr(`meta[property="og:title"]`, "content"); got != "" {
		t.Errorf("Attr(missing) = %q, want empty", got)
	}
	if got := doc.Attr("h1", "data-missing"); got != "" {
		t.Errorf("Attr(missing attribute) = %q, want empty", got)
	}
}

func TestDocument_Texts(t *testing.T) {
	doc := mustParse(t, page)

	got := doc.Texts(".tags .tag")
	want := []string{"go", "meetup"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Texts() = %v, want %v", got, want)
	}
	if n := len(doc.All(".tags .tag")); n != 3 {
		t.Errorf("All() returned %d elements, want 3", n)
	}
}

func TestDocument_Scripts(t *testing.T) {
	doc := mustParse(t, page)

	got := doc.Scripts("application/ld+json")
	want := []string{`{"@type":"Event"}`, `[]`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Scripts() = %q, want %q", got, want)
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"   ", ""},
		{"  hello   world  ", "hello world"},
		{"line\none\ttab", "line one tab"},
		{"\u00a0 nbsp\u00a0\u00a0text ", "nbsp text"},
		{"zero\u200bwidth", "zerowidth"},
		{"\ufb01nal call", "\ufb01nal call"},
		{"Go™ Meetup", "Go™ Meetup"},
		{"Ｔｏｋｙｏ Jazz ①", "Ｔｏｋｙｏ Jazz ①"},
		{"Room ²", "Room ²"},
		{"Cafe\u0301  night", "Caf\u00e9 night"},
	}

	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
