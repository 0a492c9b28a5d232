package cir

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Pos is a source position in an analyzed translation unit.
type Pos struct {
	File string
	Line int
	Col  int
}

// NoPos denotes a missing source position.
var NoPos = Pos{}

func (p Pos) IsValid() bool {
	return p.File != "" || p.Line != 0
}

func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	if p.Col == 0 {
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

func (p Pos) Hash() uint32 {
	var h uint32 = 17
	for i := 0; i < len(p.File); i++ {
		h = h*31 + uint32(p.File[i])
	}
	return h*31 + uint32(p.Line)*31 + uint32(p.Col)
}

// Ext returns the lower-cased extension of the position's file,
// including the dot, or "" when there is none.
func (p Pos) Ext() string {
	return strings.ToLower(filepath.Ext(p.File))
}
