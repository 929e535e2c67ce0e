package utils

import (
	"strings"
)

// Static tree used by compressed strings in bit streams.
// Every byte value has a code; the tree is built once from charFreqs.
type huffNode struct {
	// children; a negative value -(c+1) is the leaf for byte c
	child [2]int16
}

var (
	huffNodes []huffNode
	huffRoot  int16
)

// charFreqs is a stand-in weighted for English text until the engine's own
// frequency table is available; strings compressed by the game will not decode
// to their real text with it.
var charFreqs = func() (f [256]uint32) {
	set := func(chars string, weight uint32) {
		for i := 0; i < len(chars); i++ {
			f[chars[i]] = weight
		}
	}
	set("\t\n\r", 8)
	set(" ", 1200)
	set("etaoinshr", 420)
	set("dlcumwfgypb", 160)
	set("vkjxqz", 24)
	set("ETAOINSHR", 60)
	set("DLCUMWFGYPBVKJXQZ", 22)
	set("0123456789", 90)
	set("_.-/\\", 110)
	set(",:;'\"()[]!?", 30)
	set("#$%&*+<=>@^`{|}~", 6)
	// every other value stays representable
	for i := range f {
		f[i]++
	}
	return f
}()

func init() {
	buildHuffTree()
}

type huffWrap struct {
	ref    int16
	weight uint32
}

// buildHuffTree merges the two lightest entries until one is left.
// Ties go to the lower slot, so the tree is the same on every run.
func buildHuffTree() {
	wraps := make([]huffWrap, 256)
	for i := range wraps {
		wraps[i] = huffWrap{ref: int16(-(i + 1)), weight: charFreqs[i]}
	}
	huffNodes = make([]huffNode, 0, 255)

	for len(wraps) > 1 {
		min1, min2 := -1, -1
		for i, w := range wraps {
			if min1 == -1 || w.weight < wraps[min1].weight {
				min2 = min1
				min1 = i
			} else if min2 == -1 || w.weight < wraps[min2].weight {
				min2 = i
			}
		}
		if min2 < min1 {
			min1, min2 = min2, min1
		}

		huffNodes = append(huffNodes, huffNode{child: [2]int16{wraps[min1].ref, wraps[min2].ref}})
		merged := huffWrap{ref: int16(len(huffNodes) - 1), weight: wraps[min1].weight + wraps[min2].weight}

		wraps[min1] = merged
		wraps = append(wraps[:min2], wraps[min2+1:]...)
	}
	huffRoot = wraps[0].ref
}

// HuffmanDecode walks the static tree once per character, reading one flag
// per edge: clear goes to child 0, set to child 1.
func HuffmanDecode(bc *BitCursor, length int) (string, error) {
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		node := huffRoot
		for node >= 0 {
			if bc.RemainingBits() < 1 {
				return "", bc.Fail(ErrCorruptString, "huffman stream ended in char %d of %d", i, length)
			}
			bit := 0
			if bc.ReadFlag() {
				bit = 1
			}
			node = huffNodes[node].child[bit]
		}
		sb.WriteByte(byte(-(node + 1)))
	}
	return strings.ToValidUTF8(sb.String(), ""), nil
}
