package score

import "testing"

func TestExtractEmpty(t *testing.T) {
	f := Extract("")
	if len(f.Words) != 0 || len(f.Entities) != 0 || len(f.Concepts) != 0 || len(f.CodeTokens) != 0 {
		t.Errorf("expected empty sets for empty content, got %+v", f)
	}
	if f.HasCode || f.HasQuestion || f.HasCommand {
		t.Errorf("expected cleared flags for empty content, got %+v", f)
	}
}

func TestExtractWords(t *testing.T) {
	f := Extract("Use PostgreSQL for storage")
	for _, w := range []string{"use", "postgresql", "for", "storage"} {
		if !f.Words[w] {
			t.Errorf("missing word %q in %v", w, f.Words)
		}
	}
}

func TestExtractEntities(t *testing.T) {
	tests := []struct {
		name    string
		content string
		entity  string
	}{
		{"file path", "edit internal/store/db.go to add the index", "internal/store/db.go"},
		{"function call", "then call ParseFile() on the input", "parsefile"},
		{"camel case", "the MemoryGraph owns all nodes", "memorygraph"},
		{"proper noun", "we decided to use React for the UI", "react"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Extract(tt.content)
			if !f.Entities[tt.entity] {
				t.Errorf("missing entity %q in %v", tt.entity, f.Entities)
			}
		})
	}
}

func TestExtractSkipsSentenceInitialCapitals(t *testing.T) {
	f := Extract("Tomorrow we deploy. Nothing else changes")
	if f.Entities["tomorrow"] || f.Entities["nothing"] {
		t.Errorf("sentence-initial words treated as entities: %v", f.Entities)
	}
}

func TestExtractConceptsAndCode(t *testing.T) {
	f := Extract("the database query uses an index for performance")
	for _, c := range []string{"database", "query", "index", "performance"} {
		if !f.Concepts[c] {
			t.Errorf("missing concept %q", c)
		}
	}

	f = Extract("func main() { return }")
	if !f.CodeTokens["func"] || !f.CodeTokens["return"] {
		t.Errorf("missing code tokens in %v", f.CodeTokens)
	}
	if !f.HasCode {
		t.Error("expected HasCode for keyword-dense content")
	}
}

func TestExtractFlags(t *testing.T) {
	if !Extract("should we use Redis here?").HasQuestion {
		t.Error("expected HasQuestion")
	}
	if !Extract("fix the login handler before release").HasCommand {
		t.Error("expected HasCommand")
	}
	if Extract("the weather is nice today").HasCommand {
		t.Error("unexpected HasCommand")
	}
	if !Extract("run `go vet` on the package").HasCode {
		t.Error("expected HasCode for inline code")
	}
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Use snake_case, not camelCase! OK?")
	want := []string{"use", "snake_case", "not", "camelcase", "ok"}
	if len(tokens) != len(want) {
		t.Fatalf("got %v, want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, tokens[i], want[i])
		}
	}
}
