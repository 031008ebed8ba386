// Package asm is the two-pass d16 assembler: tokenize, parse each line into
// an instruction or pseudo-op placed in the active section, then resolve
// every symbol and section into one flat word image. Grounded throughout on
// original_source/rtl/asm.py, restructured into Go types in place of a
// handful of Python functions closing over a shared AsmContext.
package asm

import (
	"strings"
)

type assembler struct {
	symtab        *SymbolTable
	sectionOrder  []string
	sections      map[string]*Section
	activeSection *Section
}

func newAssembler() *assembler {
	return &assembler{symtab: NewSymbolTable(), sections: map[string]*Section{}}
}

func (a *assembler) hasSection(name string) bool {
	_, ok := a.sections[name]
	return ok
}

func (a *assembler) setActiveSection(name string, org *int64) {
	s, ok := a.sections[name]
	if !ok {
		base := int64(0)
		if org != nil {
			base = *org
		}
		s = NewSection(name, base)
		a.sections[name] = s
		a.sectionOrder = append(a.sectionOrder, name)
	} else if org != nil {
		s.SetOrg(*org)
	}
	a.activeSection = s
}

func (a *assembler) addObject(obj object, line int) error {
	if a.activeSection == nil {
		return newError(KindSectionNotActive, line, "can't assemble without an active section; use .section first")
	}
	a.activeSection.add(obj)
	return nil
}

func (a *assembler) parseLine(lineno int, line string) error {
	tokens := tokenize(line)
	if len(tokens) == 0 {
		return nil
	}
	key := strings.ToLower(tokens[0])

	switch key {
	case ".word":
		return a.parseWord(lineno, tokens)
	case ".section":
		return a.parseSection(lineno, tokens)
	case ".def":
		return a.parseDef(lineno, tokens)
	}

	if entry, ok := mnemonicTable[key]; ok {
		iw, err := entry.parse(entry.opcode, tokens)
		if err != nil {
			return withLine(err, lineno)
		}
		return a.addObject(iw, lineno)
	}

	if len(tokens) >= 2 && tokens[1] == ":" {
		return a.parseLabel(lineno, tokens)
	}
	return newError(KindSyntax, lineno, "instruction %q is invalid", tokens[0])
}

func (a *assembler) parseWord(lineno int, tokens []string) error {
	var values []*Expression
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			values = append(values, NewExpression(cur))
		} else {
			values = append(values, ConstExpression(0))
		}
		cur = nil
	}
	for _, tok := range tokens[1:] {
		if tok == "," {
			flush()
			continue
		}
		cur = append(cur, tok)
	}
	if len(cur) > 0 || len(tokens) == 1 {
		flush()
	}
	return a.addObject(&pseudoWord{values: values}, lineno)
}

func (a *assembler) parseSection(lineno int, tokens []string) error {
	if len(tokens) < 2 {
		return newError(KindSyntax, lineno, ".section needs a name")
	}
	name := tokens[1]
	if len(tokens) > 2 {
		expr := NewExpression(tokens[2:])
		if err := a.symtab.Resolve(); err != nil {
			return withLine(err, lineno)
		}
		v, err := expr.Value(a.symtab)
		if err != nil {
			return withLine(err, lineno)
		}
		a.setActiveSection(name, &v)
		return nil
	}
	a.setActiveSection(name, nil)
	return nil
}

func (a *assembler) parseDef(lineno int, tokens []string) error {
	if len(tokens) < 4 || tokens[2] != "=" {
		return newError(KindSyntax, lineno, ".def needs the form: .def NAME = expression")
	}
	name := tokens[1]
	if err := a.symtab.Add(name, NewExpression(tokens[3:])); err != nil {
		return withLine(err, lineno)
	}
	return nil
}

func (a *assembler) parseLabel(lineno int, tokens []string) error {
	if a.activeSection == nil {
		return newError(KindSectionNotActive, lineno, "a label needs an active section")
	}
	if err := a.symtab.Add(tokens[0], ConstExpression(a.activeSection.Org())); err != nil {
		return withLine(err, lineno)
	}
	return nil
}

// compile lays out every section and merges them into one contiguous image,
// gaps filled with 0, mirroring asm.py's AsmContext.compile.
func (a *assembler) compile() (int64, []uint16, error) {
	if err := a.symtab.Resolve(); err != nil {
		return 0, nil, err
	}
	if len(a.sectionOrder) == 0 {
		return 0, nil, nil
	}

	type laidOut struct {
		base  int64
		words []uint16
	}
	texts := make([]laidOut, 0, len(a.sectionOrder))
	for _, name := range a.sectionOrder {
		s := a.sections[name]
		words, err := s.MachineCode(a.symtab)
		if err != nil {
			return 0, nil, err
		}
		texts = append(texts, laidOut{base: s.BaseAddr, words: words})
	}

	start := texts[0].base
	end := texts[0].base + int64(len(texts[0].words))
	for _, t := range texts[1:] {
		if t.base < start {
			start = t.base
		}
		if e := t.base + int64(len(t.words)); e > end {
			end = e
		}
	}

	image := make([]uint16, end-start)
	written := make([]bool, end-start)
	for _, t := range texts {
		for ofs, w := range t.words {
			idx := t.base - start + int64(ofs)
			if written[idx] {
				return 0, nil, newError(KindOverlappingDefinition, 0, "overlapping sections at address 0x%04x", idx+start)
			}
			image[idx] = w
			written[idx] = true
		}
	}
	return start, image, nil
}

func withLine(err error, lineno int) error {
	if e, ok := err.(*Error); ok && e.Line == 0 {
		e.Line = lineno
		return e
	}
	return err
}

// Assemble compiles complete d16 assembly source into a start address and
// the contiguous word image from there, merging every ".section" and
// filling any gap between them with 0.
func Assemble(source string) (uint16, []uint16, error) {
	a := newAssembler()
	for i, line := range strings.Split(source, "\n") {
		if err := a.parseLine(i+1, line); err != nil {
			return 0, nil, err
		}
	}
	start, image, err := a.compile()
	if err != nil {
		return 0, nil, err
	}
	return uint16(start), image, nil
}
