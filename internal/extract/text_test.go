package extract

import "testing"

func TestNormalizeDescription(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only whitespace", " \n\t ", ""},
		{"newlines and tabs", "Build\n\n\tthings\r\nfast", "Build things fast"},
		{"nbsp", "a\u00a0 b", "a b"},
		{"leading and trailing", "   padded   ", "padded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDescription(tt.in); got != tt.want {
				t.Errorf("NormalizeDescription(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeDescription_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"already normal",
		"  lots \n of\t\tspace  ",
		"Requirements:\n- Go\n- SQL (Postgres)",
	}
	for _, in := range inputs {
		once := NormalizeDescription(in)
		twice := NormalizeDescription(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestInnerText_SkipsScriptAndSeparatesBlocks(t *testing.T) {
	doc := mustDoc(t, `<div id="x"><p>one</p><p>two</p><style>.a{}</style>three<br>four</div>`)
	got := innerText(doc.Find("#x"))
	if NormalizeDescription(got) != "one two three four" {
		t.Errorf("innerText = %q", got)
	}
}

func TestInnerText_EmptySelection(t *testing.T) {
	doc := mustDoc(t, `<p>hi</p>`)
	if got := innerText(doc.Find("#missing")); got != "" {
		t.Errorf("innerText = %q, want empty", got)
	}
	if got := innerText(nil); got != "" {
		t.Errorf("innerText(nil) = %q, want empty", got)
	}
}
