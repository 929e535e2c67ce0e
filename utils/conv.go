package utils

import (
	"bytes"

	"github.com/mogaika/tribes_browser/config"

	"golang.org/x/text/transform"
)

// BytesToString decodes a zero terminated string in the configured code page.
// Names in these formats are plain 8-bit text, not utf-8.
func BytesToString(bs []byte) string {
	n := BytesStringLength(bs)

	s, _, err := transform.Bytes(config.GetEncoding().NewDecoder(), bs[0:n])
	if err != nil {
		return string(bs[0:n])
	}

	return string(s)
}

func BytesStringLength(bs []byte) int {
	if l := bytes.IndexByte(bs, 0); l == -1 {
		return len(bs)
	} else {
		return l
	}
}

// ZStringAt decodes the zero terminated string starting at off.
func ZStringAt(bs []byte, off int) (string, bool) {
	if off < 0 || off >= len(bs) {
		return "", false
	}
	return BytesToString(bs[off:]), true
}

// SplitZStrings splits a buffer of zero separated strings, dropping empty ones.
func SplitZStrings(bs []byte) []string {
	list := make([]string, 0)
	for _, part := range bytes.Split(bs, []byte{0}) {
		if len(part) != 0 {
			list = append(list, BytesToString(part))
		}
	}
	return list
}
