package cir

// Program is a collection of procedures from one analyzed program.
type Program struct {
	Name  string
	Procs []*Proc
}

func (p *Program) Proc(name string) (*Proc, bool) {
	for _, proc := range p.Procs {
		if proc.Name == name {
			return proc, true
		}
	}
	return nil, false
}
