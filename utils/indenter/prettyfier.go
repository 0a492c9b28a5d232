package indenter

import (
	"fmt"
	"strings"
)

// An indenter assembles the nested renderings produced by the String
// methods of compound elements. A parent opened with Start keeps a
// single child on its own line; two or more children each get a line
// of their own, indented one step deeper than the parent.
type indenter struct {
	buf   string
	level int
}

func Indenter() indenter {
	return indenter{}
}

func (in indenter) Start(str string) indenter {
	in.buf = str
	return in
}

func (in indenter) indent() string {
	return strings.Repeat("  ", in.level)
}

func (in indenter) NestStrings(strs ...string) indenter {
	return in.NestStringsSep("", strs...)
}

func (in indenter) NestStringsSep(sep string, strs ...string) indenter {
	thunks := make([]func() string, len(strs))
	for i, s := range strs {
		s := s
		thunks[i] = func() string { return s }
	}
	return in.NestThunkedSep(sep, thunks...)
}

func (in indenter) NestSep(sep string, strs ...fmt.Stringer) indenter {
	thunks := make([]func() string, len(strs))
	for i, s := range strs {
		s := s
		thunks[i] = s.String
	}
	return in.NestThunkedSep(sep, thunks...)
}

func (in indenter) NestThunked(thunks ...func() string) indenter {
	return in.NestThunkedSep("", thunks...)
}

func (in indenter) NestThunkedSep(sep string, thunks ...func() string) indenter {
	if len(thunks) == 1 {
		in.buf += thunks[0]()
		return in
	}

	in.level++
	for i, th := range thunks {
		in.buf += "\n" + in.indent() + th()
		if i < len(thunks)-1 {
			in.buf += sep
		}
	}
	in.level--
	in.buf += "\n"
	return in
}

// End closes the rendering opened by Start. The closer lands on its
// own line exactly when the children did.
func (in indenter) End(str string) string {
	if strings.HasSuffix(in.buf, "\n") {
		return in.buf + in.indent() + str
	}
	return in.buf + str
}
