package dts

// validate replaces dangling cross references with safe values.
// Every replacement is recorded in Diagnostics.
func (s *Shape) validate() {
	ds := &s.Diagnostics
	names := len(s.Names)
	for i := range s.Nodes {
		n := &s.Nodes[i]
		if !validRef(n.NameIndex, names) {
			n.NameIndex = int32(ds.OutOfRange("node", i, "name", int(n.NameIndex), names, -1))
		}
		if !validRef(n.ParentIndex, len(s.Nodes)) {
			n.ParentIndex = int32(ds.OutOfRange("node", i, "parent", int(n.ParentIndex), len(s.Nodes), -1))
		}
		if !validRef(n.TransformIndex, len(s.Transforms)) {
			n.TransformIndex = int32(ds.OutOfRange("node", i, "transform", int(n.TransformIndex), len(s.Transforms), -1))
		}
		if n.SubSequenceCount < 0 || n.FirstSubSequence < 0 ||
			int(n.FirstSubSequence)+int(n.SubSequenceCount) > len(s.SubSequences) {
			ds.OutOfRange("node", i, "subsequence range end",
				int(n.FirstSubSequence)+int(n.SubSequenceCount), len(s.SubSequences)+1, 0)
			n.FirstSubSequence, n.SubSequenceCount = 0, 0
		}
	}

	for i := range s.Sequences {
		seq := &s.Sequences[i]
		if !validRef(seq.NameIndex, names) {
			seq.NameIndex = int32(ds.OutOfRange("sequence", i, "name", int(seq.NameIndex), names, -1))
		}
	}

	for i := range s.SubSequences {
		ss := &s.SubSequences[i]
		if !validRef(ss.SequenceIndex, len(s.Sequences)) {
			ss.SequenceIndex = int32(ds.OutOfRange("subsequence", i, "sequence", int(ss.SequenceIndex), len(s.Sequences), -1))
		}
		if ss.KeyFrameCount < 0 || ss.FirstKeyFrame < 0 ||
			int(ss.FirstKeyFrame)+int(ss.KeyFrameCount) > len(s.KeyFrames) {
			ds.OutOfRange("subsequence", i, "keyframe range end",
				int(ss.FirstKeyFrame)+int(ss.KeyFrameCount), len(s.KeyFrames)+1, 0)
			ss.FirstKeyFrame, ss.KeyFrameCount = 0, 0
		}
	}

	for i := range s.KeyFrames {
		kf := &s.KeyFrames[i]
		if !validRef(kf.Value, len(s.Transforms)) {
			kf.Value = int32(ds.OutOfRange("keyframe", i, "transform", int(kf.Value), len(s.Transforms), -1))
		}
	}

	for i := range s.Objects {
		o := &s.Objects[i]
		if !validRef(int32(o.NameIndex), names) {
			o.NameIndex = int16(ds.OutOfRange("object", i, "name", int(o.NameIndex), names, -1))
		}
		if !validRef(o.MeshIndex, len(s.Meshes)) {
			o.MeshIndex = int32(ds.OutOfRange("object", i, "mesh", int(o.MeshIndex), len(s.Meshes), -1))
		}
		if !validRef(o.NodeIndex, len(s.Nodes)) {
			o.NodeIndex = int32(ds.OutOfRange("object", i, "node", int(o.NodeIndex), len(s.Nodes), -1))
		}
	}

	for i := range s.Details {
		dt := &s.Details[i]
		if !validRef(dt.RootNode, len(s.Nodes)) {
			dt.RootNode = int32(ds.OutOfRange("detail", i, "root node", int(dt.RootNode), len(s.Nodes), -1))
		}
	}

	if s.Materials != nil {
		materials := len(s.Materials.TextureNames())
		for i, m := range s.Meshes {
			for j := range m.Faces {
				f := &m.Faces[j]
				if !inRange(f.Material, materials) {
					ds.OutOfRange("mesh face", i, "material", int(f.Material), materials, 0)
					f.Material = 0
				}
			}
		}
	}
}

// validRef allows -1 as the stored "none" value.
func validRef(idx int32, size int) bool {
	return idx == -1 || inRange(idx, size)
}

func inRange(idx int32, size int) bool {
	return idx >= 0 && int(idx) < size
}
