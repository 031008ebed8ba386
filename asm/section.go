package asm

// object is anything that can be placed in a section and turned into one or
// more machine words: a decoded instruction or a ".word" pseudo-op,
// mirroring original_source/rtl/asm.py's InstructionBase/Instruction/
// PseudoOpWord split.
type object interface {
	machineCode(symtab *SymbolTable) ([]uint16, error)
	size() int
}

type placement struct {
	addr int64
	obj  object
}

// Section is a named region of address space with its own write cursor
// ("org"). Re-entering a section with ".section NAME" (no address) resumes
// at the cursor it was left at; giving an address resets the cursor.
type Section struct {
	Name     string
	BaseAddr int64
	org      int64
	objects  []placement
}

// NewSection creates a section starting at baseAddr.
func NewSection(name string, baseAddr int64) *Section {
	return &Section{Name: name, BaseAddr: baseAddr, org: baseAddr}
}

// SetOrg repositions the write cursor, e.g. for ".section NAME <addr>" on a
// section that already exists.
func (s *Section) SetOrg(org int64) { s.org = org }

// Org returns the address the next object will be placed at -- this is what
// label definitions capture.
func (s *Section) Org() int64 { return s.org }

func (s *Section) add(obj object) {
	s.objects = append(s.objects, placement{addr: s.org, obj: obj})
	s.org += int64(obj.size())
}

// MachineCode lays out every object placed in the section into a contiguous
// slice of words starting at BaseAddr, detecting any two objects that claim
// the same address.
func (s *Section) MachineCode(symtab *SymbolTable) ([]uint16, error) {
	var words []uint16
	var written []bool

	ensure := func(n int) {
		for len(words) < n {
			words = append(words, 0)
			written = append(written, false)
		}
	}

	for _, p := range s.objects {
		vals, err := p.obj.machineCode(symtab)
		if err != nil {
			return nil, err
		}
		for ofs, w := range vals {
			idx := int(p.addr-s.BaseAddr) + ofs
			ensure(idx + 1)
			if written[idx] {
				return nil, newError(KindOverlappingDefinition, 0,
					"multiple values defined for address 0x%04x in section %s", int(p.addr)+ofs, s.Name)
			}
			words[idx] = w
			written[idx] = true
		}
	}
	return words, nil
}

// End returns the address one past the last object placed, for computing
// the overall image size when merging sections.
func (s *Section) End() int64 {
	if len(s.objects) == 0 {
		return s.BaseAddr
	}
	last := s.objects[len(s.objects)-1]
	return last.addr + int64(last.obj.size())
}
