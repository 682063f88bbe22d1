package symbol

import "testing"

func TestTableInterning(t *testing.T) {
	tab := NewTable()
	w := tab.Writer()
	w.DeclareStart("expr'")
	mustIntern(t, w, "expr", false)
	mustIntern(t, w, "term", false)
	mustIntern(t, w, "factor", false)
	mustIntern(t, w, "id", true)
	mustIntern(t, w, "add", true)
	mustIntern(t, w, "mul", true)
	mustIntern(t, w, "l_paren", true)
	mustIntern(t, w, "r_paren", true)

	wantNonTerm := []string{"", "expr'", "expr", "term", "factor"}
	wantTerm := []string{"", eofText, "id", "add", "mul", "l_paren", "r_paren"}

	cases := []struct {
		text       string
		start      bool
		nonTerm    bool
		terminal   bool
	}{
		{text: "expr'", start: true, nonTerm: true},
		{text: "expr", nonTerm: true},
		{text: "term", nonTerm: true},
		{text: "factor", nonTerm: true},
		{text: "id", terminal: true},
		{text: "add", terminal: true},
		{text: "mul", terminal: true},
		{text: "l_paren", terminal: true},
		{text: "r_paren", terminal: true},
	}
	r := tab.Reader()
	for _, c := range cases {
		t.Run(c.text, func(t *testing.T) {
			sym, ok := r.ToSymbol(c.text)
			if !ok {
				t.Fatalf("symbol not found for %q", c.text)
			}
			if sym.IsStart() != c.start {
				t.Errorf("IsStart: want %v, got %v", c.start, sym.IsStart())
			}
			if sym.IsNonTerminal() != c.nonTerm {
				t.Errorf("IsNonTerminal: want %v, got %v", c.nonTerm, sym.IsNonTerminal())
			}
			if sym.IsTerminal() != c.terminal {
				t.Errorf("IsTerminal: want %v, got %v", c.terminal, sym.IsTerminal())
			}
			text, ok := r.ToText(sym)
			if !ok || text != c.text {
				t.Errorf("ToText: want %q, got %q (ok=%v)", c.text, text, ok)
			}
		})
	}

	t.Run("EOF", func(t *testing.T) {
		if !SymbolEOF.IsTerminal() || !SymbolEOF.IsEOF() || SymbolEOF.IsNil() {
			t.Fatalf("SymbolEOF has unexpected properties: %+v", SymbolEOF)
		}
	})

	t.Run("Nil", func(t *testing.T) {
		if !SymbolNil.IsNil() || SymbolNil.IsTerminal() || SymbolNil.IsNonTerminal() {
			t.Fatalf("SymbolNil has unexpected properties")
		}
	})

	t.Run("non-terminal texts", func(t *testing.T) {
		got := r.NonTerminalTexts()
		if len(got) != len(wantNonTerm) {
			t.Fatalf("want %d non-terminals, got %d (%v)", len(wantNonTerm), len(got), got)
		}
		for i, text := range got {
			if text != wantNonTerm[i] {
				t.Errorf("non-terminal %d: want %q, got %q", i, wantNonTerm[i], text)
			}
		}
	})

	t.Run("terminal texts", func(t *testing.T) {
		got := r.TerminalTexts()
		if len(got) != len(wantTerm) {
			t.Fatalf("want %d terminals, got %d (%v)", len(wantTerm), len(got), got)
		}
		for i, text := range got {
			if text != wantTerm[i] {
				t.Errorf("terminal %d: want %q, got %q", i, wantTerm[i], text)
			}
		}
	})
}

func mustIntern(t *testing.T, w *Writer, text string, terminal bool) Symbol {
	t.Helper()
	sym, err := w.Intern(text, terminal)
	if err != nil {
		t.Fatalf("Intern(%q): %v", text, err)
	}
	return sym
}
