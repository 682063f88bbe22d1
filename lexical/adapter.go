package lexical

import (
	"fmt"
	"strings"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mlspec "github.com/nihei9/maleeni/spec"

	"github.com/kymerac/lalrgen/grammar/symbol"
)

// Compiled is what the adapter hands back to the table compiler / artifact
// assembly: the maleeni DFA plus the index tables translating one of its
// lexical "kinds" into this grammar's terminal symbol numbers.
type Compiled struct {
	Spec           *mlspec.CompiledLexSpec
	KindToTerminal []int
	TerminalToKind []int
	Skip           []int
}

// Build hands the collected literal/regex/whitespace patterns to maleeni
// and compiles them into a DFA, tagging every non-skip pattern with its
// owning terminal's symbol so the runtime driver can turn a token's kind
// back into a parser-table column.
func Build(name string, spec *Spec, symTab *symbol.Reader) (*Compiled, error) {
	mlSpec := &mlspec.LexSpec{Name: name}

	var skipKinds []mlspec.LexKindName
	for _, e := range spec.entries {
		switch e.kind {
		case entryLiteral:
			name, ok := symTab.ToText(e.sym)
			if !ok {
				return nil, fmt.Errorf("lexical.Build: no text for symbol %s", e.sym)
			}
			mlSpec.Entries = append(mlSpec.Entries, &mlspec.LexEntry{
				Kind:    mlspec.LexKindName(name),
				Pattern: mlspec.LexPattern(mlspec.EscapePattern(e.pattern)),
			})
		case entryRegex:
			name, ok := symTab.ToText(e.sym)
			if !ok {
				return nil, fmt.Errorf("lexical.Build: no text for symbol %s", e.sym)
			}
			mlSpec.Entries = append(mlSpec.Entries, &mlspec.LexEntry{
				Kind:    mlspec.LexKindName(name),
				Pattern: mlspec.LexPattern(e.pattern),
			})
		case entryWhitespace:
			kind := fmt.Sprintf("__ws_%d", len(skipKinds))
			mlSpec.Entries = append(mlSpec.Entries, &mlspec.LexEntry{
				Kind:    mlspec.LexKindName(kind),
				Pattern: mlspec.LexPattern(e.pattern),
			})
			skipKinds = append(skipKinds, mlspec.LexKindName(kind))
		}
	}

	if dup := mlspec.FindSpellingInconsistencies(kindNames(mlSpec.Entries)); len(dup) > 0 {
		groups := make([]string, len(dup))
		for i, g := range dup {
			groups[i] = strings.Join(g, "/")
		}
		return nil, fmt.Errorf("lexical.Build: inconsistent terminal spellings: %v", strings.Join(groups, ", "))
	}

	compiled, err, cErrs := mlcompiler.Compile(mlSpec, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
	if err != nil {
		if len(cErrs) > 0 {
			var b strings.Builder
			for i, cErr := range cErrs {
				if i > 0 {
					b.WriteByte('\n')
				}
				writeCompileError(&b, cErr)
			}
			return nil, fmt.Errorf("%v", b.String())
		}
		return nil, err
	}

	kind2Term := make([]int, len(compiled.KindNames))
	term2Kind := make([]int, symTab.TerminalCount())
	skip := make([]int, len(compiled.KindNames))
	for i, k := range compiled.KindNames {
		if k == mlspec.LexKindNameNil {
			kind2Term[mlspec.LexKindIDNil] = symbol.SymbolNil.Num().Int()
			term2Kind[symbol.SymbolNil.Num()] = mlspec.LexKindIDNil.Int()
			continue
		}
		skipped := false
		for _, sk := range skipKinds {
			if k == sk {
				skipped = true
				break
			}
		}
		if skipped {
			// A skip kind maps to the nil symbol; it never reaches the parser.
			skip[i] = 1
			continue
		}
		sym, ok := symTab.ToSymbol(k.String())
		if !ok {
			return nil, fmt.Errorf("lexical.Build: terminal %q not found in symbol table", k)
		}
		kind2Term[i] = sym.Num().Int()
		term2Kind[sym.Num()] = i
	}

	return &Compiled{
		Spec:           compiled,
		KindToTerminal: kind2Term,
		TerminalToKind: term2Kind,
		Skip:           skip,
	}, nil
}

func kindNames(entries []*mlspec.LexEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Kind.String()
	}
	return names
}

func writeCompileError(b *strings.Builder, cErr *mlcompiler.CompileError) {
	if cErr.Fragment {
		fmt.Fprintf(b, "fragment ")
	}
	fmt.Fprintf(b, "%v: %v", cErr.Kind, cErr.Cause)
}
