package dts

import (
	"fmt"
	"strings"
)

// Name returns the name record i, or "" when there is none.
func (s *Shape) Name(i int) string {
	if i < 0 || i >= len(s.Names) {
		return ""
	}
	return strings.TrimSpace(s.Names[i].String())
}

func (s *Shape) NodeName(node int) string {
	if node < 0 || node >= len(s.Nodes) {
		return ""
	}
	if name := s.Name(int(s.Nodes[node].NameIndex)); name != "" {
		return name
	}
	return fmt.Sprintf("UnnamedNode%d", node)
}

func (s *Shape) SequenceName(seq int) string {
	if seq < 0 || seq >= len(s.Sequences) {
		return ""
	}
	return s.Name(int(s.Sequences[seq].NameIndex))
}

func (s *Shape) ObjectName(obj int) string {
	if obj < 0 || obj >= len(s.Objects) {
		return ""
	}
	return s.Name(int(s.Objects[obj].NameIndex))
}

// FindSequence looks a sequence up by name ignoring case. Returns -1 if absent.
func (s *Shape) FindSequence(name string) int {
	for i := range s.Sequences {
		if strings.EqualFold(s.SequenceName(i), name) {
			return i
		}
	}
	return -1
}

func (s *Shape) FindNode(name string) int {
	for i := range s.Nodes {
		if strings.EqualFold(s.Name(int(s.Nodes[i].NameIndex)), name) {
			return i
		}
	}
	return -1
}
