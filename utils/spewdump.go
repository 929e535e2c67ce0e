package utils

import (
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// decoded documents are large value trees; addresses and capacities are noise
var spewConfig = &spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump writes a readable tree of the decoded documents to w.
func Dump(w io.Writer, a ...interface{}) {
	spewConfig.Fdump(w, a...)
}

func SDump(a ...interface{}) string {
	return spewConfig.Sdump(a...)
}

// DumpToOneLineString shows raw bytes such as a file magic, escaping
// everything outside printable ascii as \xNN.
func DumpToOneLineString(buf []byte) string {
	var out strings.Builder
	for _, b := range buf {
		if b >= 0x20 && b < 0x7f && b != '\\' {
			out.WriteByte(b)
		} else {
			fmt.Fprintf(&out, "\\x%.2x", b)
		}
	}
	return out.String()
}
