package dts

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/tribes_browser/pack/dml"
	"github.com/mogaika/tribes_browser/pack/mesh"
	"github.com/mogaika/tribes_browser/utils"
)

const SHAPE_CLASS = "TS::Shape"

const QUAT16_MAX = 32767

const (
	// object is hidden until script code shows it
	OBJECT_FLAG_INVISIBLE = 0x1
)

type Node struct {
	NameIndex        int32
	ParentIndex      int32
	SubSequenceCount int32
	FirstSubSequence int32
	TransformIndex   int32
}

// IsRoot reports whether node idx has no parent.
func (n *Node) IsRoot(idx int) bool {
	return n.ParentIndex == -1 || int(n.ParentIndex) == idx
}

type Sequence struct {
	NameIndex int32
	Cyclic    int32
	Duration  float32
	Priority  int32

	FirstTriggerFrame int32
	TriggerFrameCount int32

	IFLSubSequenceCount int32
	FirstIFLSubSequence int32
}

type SubSequence struct {
	SequenceIndex int32
	KeyFrameCount int32
	FirstKeyFrame int32
}

type KeyFrame struct {
	Position      float32
	Value         int32 // transform index
	MaterialIndex int32
}

// Quat16 is a stored rotation. Components are raw file values: int16 ranged
// for newer files, plain floats for older ones. Max is the divisor that maps
// them onto the unit range.
type Quat16 struct {
	X, Y, Z, W float32
	Max        float32
}

// Quat returns the normalized rotation. A zero quaternion becomes identity.
func (q Quat16) Quat() mgl32.Quat {
	max := q.Max
	if max == 0 {
		max = 1
	}
	return utils.NormalizeQuat(mgl32.Quat{
		W: q.W / max,
		V: mgl32.Vec3{q.X / max, q.Y / max, q.Z / max},
	})
}

type Transform struct {
	Rotation    Quat16
	Translation mgl32.Vec3
	Scale       mgl32.Vec3
}

var IdentityTransform = Transform{
	Rotation: Quat16{W: QUAT16_MAX, Max: QUAT16_MAX},
	Scale:    mgl32.Vec3{1, 1, 1},
}

// Matrix builds translate * rotate * scale.
func (t *Transform) Matrix() mgl32.Mat4 {
	return utils.ComposeTRS(t.Translation, t.Rotation.Quat(), t.Scale)
}

type Object struct {
	NameIndex int16
	Flags     int16
	MeshIndex int32
	NodeIndex int32

	// up to version 7 the offset is the point of an embedded rotation matrix
	OffsetFlags    int32
	OffsetRotation [9]float32
	Offset         mgl32.Vec3
	// version 8 alignment field, meaning unknown
	Pad int16

	SubSequenceCount int16
	FirstSubSequence int16
}

func (o *Object) Invisible() bool {
	return o.Flags&OBJECT_FLAG_INVISIBLE != 0
}

type Detail struct {
	RootNode int32
	Size     float32
}

type Transition struct {
	StartSequence int32
	EndSequence   int32
	StartPosition float32
	EndPosition   float32
	Duration      float32
	Rotation      Quat16
	Translation   mgl32.Vec3
	Scale         mgl32.Vec3
}

type FrameTrigger struct {
	Position float32
	Value    int32
}

type Name [NAME_SIZE]byte

func (n *Name) String() string {
	return utils.BytesToString(n[:])
}

// Shape is a decoded TS::Shape document. It is not modified after decode.
type Shape struct {
	Version uint32
	Radius  float32
	Center  mgl32.Vec3
	Min     mgl32.Vec3
	Max     mgl32.Vec3

	Nodes         []Node
	Sequences     []Sequence
	SubSequences  []SubSequence
	KeyFrames     []KeyFrame
	Transforms    []Transform
	Names         []Name
	Objects       []Object
	Details       []Detail
	Transitions   []Transition
	FrameTriggers []FrameTrigger

	DefaultMaterial int32
	AlwaysNode      int32

	Meshes    []*mesh.Mesh
	Materials *dml.MaterialList

	Diagnostics utils.Diagnostics
}
