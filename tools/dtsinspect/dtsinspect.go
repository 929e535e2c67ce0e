package main

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/mogaika/tribes_browser/config"
	"github.com/mogaika/tribes_browser/pack/dts"
	"github.com/mogaika/tribes_browser/utils"
)

func printTree(w io.Writer, s *dts.Shape, pose dts.Pose) {
	world, ds := s.WorldMatrices(pose)

	children := make(map[int][]int)
	roots := make([]int, 0)
	for i := range s.Nodes {
		if n := &s.Nodes[i]; n.IsRoot(i) || int(n.ParentIndex) >= len(s.Nodes) {
			roots = append(roots, i)
		} else {
			children[int(n.ParentIndex)] = append(children[int(n.ParentIndex)], i)
		}
	}

	visited := make([]bool, len(s.Nodes))
	var walk func(node, depth int)
	walk = func(node, depth int) {
		if visited[node] {
			return
		}
		visited[node] = true

		t := s.NodeTransform(node, pose)
		euler := utils.RadiansToDegreeV3(utils.QuatToEuler(t.Rotation.Quat()))
		pos := world[node].Col(3).Vec3()
		fmt.Fprintf(w, "%*s%d %s  local t%v r%.1f s%v  world %v\n",
			depth*2, "", node, s.NodeName(node), t.Translation, euler, t.Scale, pos)
		for _, child := range children[node] {
			walk(child, depth+1)
		}
	}
	for _, root := range roots {
		walk(root, 0)
	}
	for i := range s.Nodes {
		if !visited[i] {
			walk(i, 0)
		}
	}

	for _, d := range ds {
		fmt.Fprintln(w, d)
	}
}

func printSummary(w io.Writer, s *dts.Shape) {
	fmt.Fprintf(w, "version %d radius %v center %v bounds %v..%v\n", s.Version, s.Radius, s.Center, s.Min, s.Max)
	fmt.Fprintf(w, "%d nodes %d sequences %d objects %d details %d meshes\n",
		len(s.Nodes), len(s.Sequences), len(s.Objects), len(s.Details), len(s.Meshes))
	for i := range s.Sequences {
		fmt.Fprintf(w, "  sequence %d %q\n", i, s.SequenceName(i))
	}
	for i, d := range s.Details {
		fmt.Fprintf(w, "  detail %d root %d size %v\n", i, d.RootNode, d.Size)
	}
	for i, tex := range s.MaterialTextures() {
		fmt.Fprintf(w, "  material %d %s\n", i, tex)
	}
}

func main() {
	var seq, encoding string
	var dump, last bool
	flag.StringVar(&seq, "seq", "", "Sequence to pose nodes with (default: viewer choice, '-' for none)")
	flag.BoolVar(&last, "last", false, "Use the last keyframe of -seq")
	flag.BoolVar(&dump, "spew", false, "Dump the whole decoded document")
	flag.StringVar(&encoding, "encoding", "", "Code page of names")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] file.dts\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	if encoding != "" {
		if err := config.SetEncoding(encoding); err != nil {
			log.Fatal(err)
		}
	}

	data, err := ioutil.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	s, err := dts.NewFromData(data)
	if err != nil {
		log.Fatal(err)
	}

	if dump {
		utils.Dump(os.Stdout, s)
		return
	}

	pose := s.SelectPose()
	switch seq {
	case "":
	case "-":
		pose = dts.DefaultPose
	default:
		idx := s.FindSequence(seq)
		if idx == -1 {
			log.Fatalf("No sequence %q", seq)
		}
		pose = dts.Pose{Sequence: idx, LastKeyFrame: last}
	}

	printSummary(os.Stdout, s)
	fmt.Printf("pose: sequence %d %q last=%v\n", pose.Sequence, s.SequenceName(pose.Sequence), pose.LastKeyFrame)
	printTree(os.Stdout, s, pose)
	for _, d := range s.Diagnostics {
		fmt.Println(d)
	}
}
