package dts

import (
	"github.com/mogaika/tribes_browser/utils"
)

const MAX_VERSION = 8

// layout describes record shapes for one file version. Decoders branch on
// these fields only, never on the version number itself.
type layout struct {
	Version int

	WideNodes        bool // 5 x int32 instead of 5 x int16
	SequenceTriggers bool
	SequenceIFL      bool
	WideSubSequences bool
	KeyFrameMaterial bool
	WideKeyFrames    bool
	FloatQuats       bool
	QuatMax          float32
	TransformScale   bool
	ObjectMatrix     bool // offset stored in an embedded rotation matrix

	HasTransitions      bool
	TransitionQuatFloat bool
	TransitionScale     bool
	HasFrameTriggers    bool
	HasBoundsBox        bool
	HasDefaultMaterial  bool
	HasAlwaysNode       bool
}

var layouts [MAX_VERSION + 1]layout

func init() {
	for v := range layouts {
		layouts[v] = layout{
			Version:          v,
			WideNodes:        v <= 7,
			SequenceTriggers: v >= 4,
			SequenceIFL:      v >= 5,
			WideSubSequences: v <= 7,
			KeyFrameMaterial: v >= 3,
			WideKeyFrames:    v <= 7,
			FloatQuats:       v < 7,
			QuatMax:          QUAT16_MAX,
			TransformScale:   v <= 7,
			ObjectMatrix:     v <= 7,

			HasTransitions:      v >= 2,
			TransitionQuatFloat: v <= 6,
			TransitionScale:     v <= 7,
			HasFrameTriggers:    v >= 4,
			HasBoundsBox:        v >= 8,
			HasDefaultMaterial:  v >= 5,
			HasAlwaysNode:       v >= 6,
		}
		if layouts[v].FloatQuats {
			layouts[v].QuatMax = 1
		}
	}
}

func layoutFor(version uint32) (*layout, error) {
	if version > MAX_VERSION {
		return nil, utils.NewFormatError(utils.ErrUnsupportedVersion, SHAPE_CLASS, 0, "version %d", version)
	}
	return &layouts[version], nil
}

func (l *layout) NodeSize() int {
	if l.WideNodes {
		return 5 * 4
	}
	return 5 * 2
}

func (l *layout) SequenceSize() int {
	size := 4 * 4
	if l.SequenceTriggers {
		size += 2 * 4
	}
	if l.SequenceIFL {
		size += 2 * 4
	}
	return size
}

func (l *layout) SubSequenceSize() int {
	if l.WideSubSequences {
		return 3 * 4
	}
	return 3 * 2
}

func (l *layout) KeyFrameSize() int {
	switch {
	case !l.KeyFrameMaterial:
		return 4 + 4
	case l.WideKeyFrames:
		return 4 + 4 + 4
	default:
		return 4 + 2 + 2
	}
}

func (l *layout) quatSize() int {
	if l.FloatQuats {
		return 4 * 4
	}
	return 4 * 2
}

func (l *layout) TransformSize() int {
	size := l.quatSize() + 12
	if l.TransformScale {
		size += 12
	}
	return size
}

func (l *layout) ObjectSize() int {
	if l.ObjectMatrix {
		return 2 + 2 + 4 + 4 + (4 + 9*4 + 12) + 2 + 2
	}
	return 2 + 2 + 4 + 2 + 2 + 12 + 2 + 2
}

func (l *layout) TransitionSize() int {
	size := 2*4 + 3*4 + 12
	if l.TransitionQuatFloat {
		size += 4 * 4
	} else {
		size += 4 * 2
	}
	if l.TransitionScale {
		size += 12
	}
	return size
}

const (
	NAME_SIZE          = 24
	DETAIL_SIZE        = 4 + 4
	FRAME_TRIGGER_SIZE = 4 + 4
)
