package dts

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/tribes_browser/pack"
	"github.com/mogaika/tribes_browser/pack/dml"
	"github.com/mogaika/tribes_browser/pack/mesh"
	"github.com/mogaika/tribes_browser/pack/pers"
	"github.com/mogaika/tribes_browser/utils"
)

func init() {
	pack.SetHandler(".DTS", func(src utils.ResourceSource, data []byte) (interface{}, error) {
		return NewFromData(data)
	})
}

type counts struct {
	Nodes         int
	Sequences     int
	SubSequences  int
	KeyFrames     int
	Transforms    int
	Names         int
	Objects       int
	Details       int
	Meshes        int
	Transitions   int
	FrameTriggers int
}

type decoder struct {
	c     *utils.Cursor
	l     *layout
	s     *Shape
	count counts
}

// NewFromData decodes a whole shape file.
func NewFromData(b []byte) (*Shape, error) {
	s, err := NewFromCursor(utils.NewCursor("shape", b))
	return s, errors.Wrapf(err, "Error decoding %s", SHAPE_CLASS)
}

func NewFromCursor(c *utils.Cursor) (*Shape, error) {
	h, err := pers.ReadHeader(c.SetKind("shape header"), SHAPE_CLASS)
	if err != nil {
		return nil, err
	}
	l, err := layoutFor(h.Version)
	if err != nil {
		return nil, err
	}

	d := &decoder{c: c, l: l, s: &Shape{Version: h.Version}}
	steps := []func(){
		d.readHeader,
		d.readNodes,
		d.readSequences,
		d.readSubSequences,
		d.readKeyFrames,
		d.readTransforms,
		d.readNames,
		d.readObjects,
		d.readDetails,
		d.readTransitions,
		d.readFrameTriggers,
		d.readTrailer,
	}
	for _, step := range steps {
		step()
		if c.Err() != nil {
			return nil, c.Err()
		}
	}
	if err := d.readMeshes(); err != nil {
		return nil, err
	}
	if err := d.readMaterials(); err != nil {
		return nil, err
	}

	d.s.validate()
	return d.s, nil
}

func (d *decoder) readHeader() {
	c := d.c.SetKind("shape header")
	d.count = counts{
		Nodes:        int(c.ReadLI32()),
		Sequences:    int(c.ReadLI32()),
		SubSequences: int(c.ReadLI32()),
		KeyFrames:    int(c.ReadLI32()),
		Transforms:   int(c.ReadLI32()),
		Names:        int(c.ReadLI32()),
		Objects:      int(c.ReadLI32()),
		Details:      int(c.ReadLI32()),
		Meshes:       int(c.ReadLI32()),
	}
	if d.l.HasTransitions {
		d.count.Transitions = int(c.ReadLI32())
	}
	if d.l.HasFrameTriggers {
		d.count.FrameTriggers = int(c.ReadLI32())
	}

	s := d.s
	s.Radius = c.ReadLF()
	s.Center = c.ReadVec3()
	if d.l.HasBoundsBox {
		s.Min = c.ReadVec3()
		s.Max = c.ReadVec3()
	} else {
		r := mgl32.Vec3{s.Radius, s.Radius, s.Radius}
		s.Min = s.Center.Sub(r)
		s.Max = s.Center.Add(r)
		s.Diagnostics.Add(utils.DiagBoundsHeuristic, "shape", 0,
			"version %d has no bounding box, using center +- radius", s.Version)
	}
}

// require checks a record array fits before it is allocated.
func (d *decoder) require(kind string, count, size int) bool {
	return d.c.SetKind(kind).Require(count, size)
}

func (d *decoder) readNodes() {
	if !d.require("node", d.count.Nodes, d.l.NodeSize()) {
		return
	}
	c := d.c
	d.s.Nodes = make([]Node, d.count.Nodes)
	for i := range d.s.Nodes {
		n := &d.s.Nodes[i]
		if d.l.WideNodes {
			n.NameIndex = c.ReadLI32()
			n.ParentIndex = c.ReadLI32()
			n.SubSequenceCount = c.ReadLI32()
			n.FirstSubSequence = c.ReadLI32()
			n.TransformIndex = c.ReadLI32()
		} else {
			n.NameIndex = int32(c.ReadLI16())
			n.ParentIndex = int32(c.ReadLI16())
			n.SubSequenceCount = int32(c.ReadLI16())
			n.FirstSubSequence = int32(c.ReadLI16())
			n.TransformIndex = int32(c.ReadLI16())
		}
	}
}

func (d *decoder) readSequences() {
	if !d.require("sequence", d.count.Sequences, d.l.SequenceSize()) {
		return
	}
	c := d.c
	d.s.Sequences = make([]Sequence, d.count.Sequences)
	for i := range d.s.Sequences {
		seq := &d.s.Sequences[i]
		seq.NameIndex = c.ReadLI32()
		seq.Cyclic = c.ReadLI32()
		seq.Duration = c.ReadLF()
		seq.Priority = c.ReadLI32()
		if d.l.SequenceTriggers {
			seq.FirstTriggerFrame = c.ReadLI32()
			seq.TriggerFrameCount = c.ReadLI32()
		}
		if d.l.SequenceIFL {
			seq.IFLSubSequenceCount = c.ReadLI32()
			seq.FirstIFLSubSequence = c.ReadLI32()
		}
	}
}

func (d *decoder) readSubSequences() {
	if !d.require("subsequence", d.count.SubSequences, d.l.SubSequenceSize()) {
		return
	}
	c := d.c
	d.s.SubSequences = make([]SubSequence, d.count.SubSequences)
	for i := range d.s.SubSequences {
		ss := &d.s.SubSequences[i]
		if d.l.WideSubSequences {
			ss.SequenceIndex = c.ReadLI32()
			ss.KeyFrameCount = c.ReadLI32()
			ss.FirstKeyFrame = c.ReadLI32()
		} else {
			ss.SequenceIndex = int32(c.ReadLI16())
			ss.KeyFrameCount = int32(c.ReadLI16())
			ss.FirstKeyFrame = int32(c.ReadLI16())
		}
	}
}

func (d *decoder) readKeyFrames() {
	if !d.require("keyframe", d.count.KeyFrames, d.l.KeyFrameSize()) {
		return
	}
	c := d.c
	d.s.KeyFrames = make([]KeyFrame, d.count.KeyFrames)
	for i := range d.s.KeyFrames {
		kf := &d.s.KeyFrames[i]
		kf.Position = c.ReadLF()
		switch {
		case !d.l.KeyFrameMaterial:
			kf.Value = c.ReadLI32()
		case d.l.WideKeyFrames:
			kf.Value = c.ReadLI32()
			kf.MaterialIndex = c.ReadLI32()
		default:
			kf.Value = int32(c.ReadLI16())
			kf.MaterialIndex = int32(c.ReadLI16())
		}
	}
}

func (d *decoder) readQuat(floatQuat bool) Quat16 {
	c := d.c
	if floatQuat {
		return Quat16{X: c.ReadLF(), Y: c.ReadLF(), Z: c.ReadLF(), W: c.ReadLF(), Max: 1}
	}
	return Quat16{
		X:   float32(c.ReadLI16()),
		Y:   float32(c.ReadLI16()),
		Z:   float32(c.ReadLI16()),
		W:   float32(c.ReadLI16()),
		Max: QUAT16_MAX,
	}
}

func (d *decoder) readTransforms() {
	if !d.require("transform", d.count.Transforms, d.l.TransformSize()) {
		return
	}
	d.s.Transforms = make([]Transform, d.count.Transforms)
	for i := range d.s.Transforms {
		t := &d.s.Transforms[i]
		t.Rotation = d.readQuat(d.l.FloatQuats)
		t.Translation = d.c.ReadVec3()
		if d.l.TransformScale {
			t.Scale = d.c.ReadVec3()
		} else {
			t.Scale = mgl32.Vec3{1, 1, 1}
		}
	}
}

func (d *decoder) readNames() {
	if !d.require("name", d.count.Names, NAME_SIZE) {
		return
	}
	d.s.Names = make([]Name, d.count.Names)
	for i := range d.s.Names {
		copy(d.s.Names[i][:], d.c.Read(NAME_SIZE))
	}
}

func (d *decoder) readObjects() {
	if !d.require("object", d.count.Objects, d.l.ObjectSize()) {
		return
	}
	c := d.c
	d.s.Objects = make([]Object, d.count.Objects)
	for i := range d.s.Objects {
		o := &d.s.Objects[i]
		o.NameIndex = c.ReadLI16()
		o.Flags = c.ReadLI16()
		o.MeshIndex = c.ReadLI32()
		if d.l.ObjectMatrix {
			o.NodeIndex = c.ReadLI32()
			o.OffsetFlags = c.ReadLI32()
			for j := range o.OffsetRotation {
				o.OffsetRotation[j] = c.ReadLF()
			}
			o.Offset = c.ReadVec3()
		} else {
			o.NodeIndex = int32(c.ReadLI16())
			o.Pad = c.ReadLI16()
			o.Offset = c.ReadVec3()
		}
		o.SubSequenceCount = c.ReadLI16()
		o.FirstSubSequence = c.ReadLI16()
	}
}

func (d *decoder) readDetails() {
	if !d.require("detail", d.count.Details, DETAIL_SIZE) {
		return
	}
	d.s.Details = make([]Detail, d.count.Details)
	for i := range d.s.Details {
		d.s.Details[i] = Detail{
			RootNode: d.c.ReadLI32(),
			Size:     d.c.ReadLF(),
		}
	}
}

func (d *decoder) readTransitions() {
	if !d.l.HasTransitions || !d.require("transition", d.count.Transitions, d.l.TransitionSize()) {
		return
	}
	c := d.c
	d.s.Transitions = make([]Transition, d.count.Transitions)
	for i := range d.s.Transitions {
		t := &d.s.Transitions[i]
		t.StartSequence = c.ReadLI32()
		t.EndSequence = c.ReadLI32()
		t.StartPosition = c.ReadLF()
		t.EndPosition = c.ReadLF()
		t.Duration = c.ReadLF()
		t.Rotation = d.readQuat(d.l.TransitionQuatFloat)
		t.Translation = c.ReadVec3()
		if d.l.TransitionScale {
			t.Scale = c.ReadVec3()
		} else {
			t.Scale = mgl32.Vec3{1, 1, 1}
		}
	}
}

func (d *decoder) readFrameTriggers() {
	if !d.l.HasFrameTriggers || !d.require("frame trigger", d.count.FrameTriggers, FRAME_TRIGGER_SIZE) {
		return
	}
	d.s.FrameTriggers = make([]FrameTrigger, d.count.FrameTriggers)
	for i := range d.s.FrameTriggers {
		d.s.FrameTriggers[i] = FrameTrigger{
			Position: d.c.ReadLF(),
			Value:    d.c.ReadLI32(),
		}
	}
}

func (d *decoder) readTrailer() {
	c := d.c.SetKind("shape trailer")
	d.s.DefaultMaterial = 0
	if d.l.HasDefaultMaterial {
		d.s.DefaultMaterial = c.ReadLI32()
	}
	d.s.AlwaysNode = -1
	if d.l.HasAlwaysNode {
		d.s.AlwaysNode = c.ReadLI32()
	}
}

// the smallest possible mesh block: header plus fixed fields
const minMeshBlockSize = 4 + 4 + 2 + 16 + 4 + 5*4 + 4

func (d *decoder) readMeshes() error {
	if !d.require("mesh", d.count.Meshes, minMeshBlockSize) {
		return d.c.Err()
	}
	d.s.Meshes = make([]*mesh.Mesh, d.count.Meshes)
	for i := range d.s.Meshes {
		m, err := mesh.NewFromCursor(d.c)
		if err != nil {
			return errors.Wrapf(err, "mesh %d", i)
		}
		d.s.Meshes[i] = m
	}
	return nil
}

func (d *decoder) readMaterials() error {
	hasMaterials := d.c.SetKind("material flag").ReadLI32()
	if d.c.Err() != nil {
		return d.c.Err()
	}
	if hasMaterials != 1 {
		return nil
	}
	ml, err := dml.NewFromCursor(d.c)
	if err != nil {
		return errors.Wrap(err, "materials")
	}
	d.s.Materials = ml
	return nil
}
