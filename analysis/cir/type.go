package cir

import (
	"github.com/cs-au-dk/cat/utils"
)

// TypeKind discriminates the structural shape of a C/C++ type.
type TypeKind uint8

const (
	TVoid TypeKind = iota
	TInt
	TFloat
	TPtr
	TArr
	TStruct
	TNamed
	TFun
)

// Type is a structural C/C++ type. Struct, class and template types
// carry their qualified display name in Name; pointer and array types
// link their element type through Elem. The representation is
// deliberately shallow: the analysis only needs to recognize pointers,
// distinguish numeric kinds, and match qualified names of library types.
type Type struct {
	Kind TypeKind
	Name string
	Elem *Type
}

var (
	VoidType   = &Type{Kind: TVoid, Name: "void"}
	IntType    = &Type{Kind: TInt, Name: "int"}
	UIntType   = &Type{Kind: TInt, Name: "unsigned int"}
	SizeType   = &Type{Kind: TInt, Name: "size_t"}
	CharType   = &Type{Kind: TInt, Name: "char"}
	FloatType  = &Type{Kind: TFloat, Name: "double"}
	StringType = &Type{Kind: TNamed, Name: "std::string"}
)

func PtrTo(t *Type) *Type {
	return &Type{Kind: TPtr, Elem: t}
}

func ArrOf(t *Type) *Type {
	return &Type{Kind: TArr, Elem: t}
}

// NamedType constructs a struct/class/template type with a qualified name.
// The optional element type carries the mapped-to type of containers.
func NamedType(name string, elem *Type) *Type {
	return &Type{Kind: TNamed, Name: name, Elem: elem}
}

func StructType(name string) *Type {
	return &Type{Kind: TStruct, Name: name}
}

func (t *Type) String() string {
	if t == nil {
		return "?"
	}
	switch t.Kind {
	case TPtr:
		return t.Elem.String() + "*"
	case TArr:
		return t.Elem.String() + "[]"
	case TFun:
		return t.Elem.String() + " (*)()"
	default:
		return t.Name
	}
}

func (t *Type) Hash() uint32 {
	if t == nil {
		return 0
	}
	h := utils.HashCombine(uint32(t.Kind), utils.HashString(t.Name))
	if t.Elem != nil {
		h = utils.HashCombine(h, t.Elem.Hash())
	}
	return h
}

// Deref returns the element type when t is a pointer or array.
func (t *Type) Deref() (*Type, bool) {
	if t != nil && (t.Kind == TPtr || t.Kind == TArr) {
		return t.Elem, true
	}
	return nil, false
}

func (t *Type) IsPointer() bool {
	return t != nil && (t.Kind == TPtr || t.Kind == TArr)
}

func (t *Type) IsInteger() bool {
	return t != nil && t.Kind == TInt
}

// QualifiedName returns the name used to match library types,
// stripping template arguments: "std::map<std::string, int>" matches
// as "std::map".
func (t *Type) QualifiedName() string {
	if t == nil {
		return ""
	}
	name := t.Name
	for i := 0; i < len(name); i++ {
		if name[i] == '<' {
			return name[:i]
		}
	}
	return name
}
