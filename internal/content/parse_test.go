package content

import (
	"strings"
	"testing"
)

func TestParsePost(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		subject   string
		wantTitle string
		wantBody  string
	}{
		{
			name:      "title label stripped",
			raw:       "Title: Foo Bar\nRest of content\nmore",
			subject:   "tech",
			wantTitle: "Foo Bar",
			wantBody:  "Rest of content\nmore",
		},
		{
			name:      "plain first line",
			raw:       "Ten Ways AI Is Changing Comic Art Forever\n\nBody paragraph.\n\n#AI #Comics",
			subject:   "art",
			wantTitle: "Ten Ways AI Is Changing Comic Art Forever",
			wantBody:  "Body paragraph.\n\n#AI #Comics",
		},
		{
			name:      "emphasis markers removed",
			raw:       "**Building a Brand From Nothing**\nFirst line of body",
			subject:   "entrepreneurship",
			wantTitle: "Building a Brand From Nothing",
			wantBody:  "First line of body",
		},
		{
			name:      "bold label",
			raw:       "**Title:** Why Startups Fail\nBecause.",
			subject:   "startups",
			wantTitle: "Why Startups Fail",
			wantBody:  "Because.",
		},
		{
			name:      "bold word before colon",
			raw:       "**Title**: Foo Bar\nBody",
			subject:   "tech",
			wantTitle: "Foo Bar",
			wantBody:  "Body",
		},
		{
			name:      "title word without colon kept",
			raw:       "Title Fight Recap\nBody",
			subject:   "boxing",
			wantTitle: "Title Fight Recap",
			wantBody:  "Body",
		},
		{
			name:      "markdown heading",
			raw:       "## A Heading Title\nText",
			subject:   "x",
			wantTitle: "A Heading Title",
			wantBody:  "Text",
		},
		{
			name:      "label-only line skipped",
			raw:       "\nTITLE:\n\nThe Real Title\nThe body",
			subject:   "x",
			wantTitle: "The Real Title",
			wantBody:  "The body",
		},
		{
			name:      "leading blank lines",
			raw:       "\n\n  Spaced Title  \n\n\nBody\n\n",
			subject:   "x",
			wantTitle: "Spaced Title",
			wantBody:  "Body",
		},
		{
			name:      "no qualifying line falls back to subject",
			raw:       "Title:\n**",
			subject:   "digital art trends",
			wantTitle: "Digital art trends",
			wantBody:  "Title:\n**",
		},
		{
			name:      "single line keeps full response as body",
			raw:       "Only A Title",
			subject:   "x",
			wantTitle: "Only A Title",
			wantBody:  "Only A Title",
		},
		{
			name:      "windows line endings",
			raw:       "Title: Foo\r\nBar\r\n",
			subject:   "x",
			wantTitle: "Foo",
			wantBody:  "Bar",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePost(tt.raw, tt.subject)
			if got.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got.Title, tt.wantTitle)
			}
			if got.Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", got.Body, tt.wantBody)
			}
		})
	}
}

func TestCapitalize(t *testing.T) {
	tests := map[string]string{
		"tech":            "Tech",
		"AI in Art":       "AI in Art",
		"ébauche":         "Ébauche",
		"":                "",
		"  padded topic ": "Padded topic",
	}
	for in, want := range tests {
		if got := Capitalize(in); got != want {
			t.Errorf("Capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderHTML(t *testing.T) {
	got := RenderHTML("## Intro\n\nSome *emphasis*.\n\n- one\n- two")
	for _, want := range []string{`<h2 id="intro">Intro</h2>`, "<em>emphasis</em>", "<li>one</li>", "<li>two</li>"} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderHTML() = %q, missing %q", got, want)
		}
	}
}
