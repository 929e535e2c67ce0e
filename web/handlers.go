package web

import (
	"bytes"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/mogaika/tribes_browser/pack"
	"github.com/mogaika/tribes_browser/pack/common"
	"github.com/mogaika/tribes_browser/pack/dis"
	"github.com/mogaika/tribes_browser/pack/dts"
	"github.com/mogaika/tribes_browser/status"
	"github.com/mogaika/tribes_browser/utils"
	"github.com/mogaika/tribes_browser/utils/gltfutils"
	"github.com/mogaika/tribes_browser/vfs"
	"github.com/mogaika/tribes_browser/webutils"
)

const TEXTURES_PREFIX = "/textures/"

type ShapeView struct {
	Name      string             `json:"name"`
	Version   uint32             `json:"version"`
	Nodes     []string           `json:"nodes"`
	Sequences []string           `json:"sequences"`
	Details   int                `json:"details"`
	Sequence  int                `json:"sequence"`
	Detail    int                `json:"detail"`
	Mesh      *common.ViewerMesh `json:"mesh"`
}

type InteriorView struct {
	Name          string             `json:"name"`
	Version       uint32             `json:"version"`
	LOD           int                `json:"lod"`
	Geometry      string             `json:"geometry"`
	Geometries    []string           `json:"geometries"`
	MaterialLists []string           `json:"material_lists"`
	Mesh          *common.ViewerMesh `json:"mesh"`
}

func stem(file string) string {
	return strings.TrimSuffix(file, filepath.Ext(file))
}

func listFiles(w http.ResponseWriter, d vfs.Directory, ext string) {
	if files, err := vfs.ListWithExt(d, ext); err != nil {
		webutils.WriteError(w, err)
	} else {
		webutils.WriteJson(w, files)
	}
}

func HandlerAjaxShapes(w http.ResponseWriter, r *http.Request) {
	listFiles(w, ShapesDirectory, ".dts")
}

func HandlerAjaxInteriors(w http.ResponseWriter, r *http.Request) {
	listFiles(w, InteriorsDir, dis.EXT_SHAPE)
}

func loadShape(file string) (*dts.Shape, error) {
	inst, err := pack.GetInstanceHandler(ShapesDirectory, file)
	if err != nil {
		return nil, err
	}
	s, ok := inst.(*dts.Shape)
	if !ok {
		return nil, errors.Errorf("File '%s' is not a shape", file)
	}
	return s, nil
}

func loadInterior(file string) (*dis.Interior, error) {
	inst, err := pack.GetInstanceHandler(InteriorsDir, file)
	if err != nil {
		return nil, err
	}
	it, ok := inst.(*dis.Interior)
	if !ok {
		return nil, errors.Errorf("File '%s' is not an interior", file)
	}
	return it, nil
}

// shapeParams reads ?seq=<name or index>&frame=last&detail=<index>.
func shapeParams(s *dts.Shape, r *http.Request) (dts.Pose, dts.LOD, error) {
	pose, lod := s.SelectPose(), dts.AutoLOD
	q := r.URL.Query()

	if seq := q.Get("seq"); seq != "" {
		idx := s.FindSequence(seq)
		if idx == -1 {
			n, err := strconv.Atoi(seq)
			if err != nil || n < -1 || n >= len(s.Sequences) {
				return pose, lod, errors.Errorf("Unknown sequence '%s'", seq)
			}
			idx = n
		}
		pose = dts.Pose{Sequence: idx, LastKeyFrame: q.Get("frame") == "last"}
	}

	if detail := q.Get("detail"); detail != "" {
		n, err := strconv.Atoi(detail)
		if err != nil {
			return pose, lod, errors.Wrapf(err, "Invalid detail '%s'", detail)
		}
		lod = dts.LOD{Detail: n}
	}
	return pose, lod, nil
}

// shapeTextures applies the configured skin of a model to its first slot.
func shapeTextures(file string, textures []string) []string {
	mapped, ok := ServerConfig.MappedTexture(stem(file))
	if len(textures) == 0 {
		return []string{ServerConfig.TextureFor(stem(file))}
	}
	if ok {
		textures = append([]string{mapped}, textures[1:]...)
	}
	return textures
}

func resolveShape(w http.ResponseWriter, r *http.Request) (*dts.Shape, *common.RenderableMesh, dts.Pose, dts.LOD, bool) {
	file := mux.Vars(r)["file"]
	s, err := loadShape(file)
	if err != nil {
		status.Error("Failed to load %s: %v", file, err)
		webutils.WriteError(w, err)
		return nil, nil, dts.DefaultPose, dts.AutoLOD, false
	}
	pose, lod, err := shapeParams(s, r)
	if err != nil {
		webutils.WriteError(w, err)
		return nil, nil, pose, lod, false
	}
	rm := dts.Resolve(s, pose, lod)
	rm.MaterialTextures = shapeTextures(file, rm.MaterialTextures)
	status.Diagnostics(file, rm.Diagnostics)
	return s, rm, pose, lod, true
}

func HandlerAjaxShape(w http.ResponseWriter, r *http.Request) {
	s, rm, pose, lod, ok := resolveShape(w, r)
	if !ok {
		return
	}
	view := &ShapeView{
		Name:      mux.Vars(r)["file"],
		Version:   s.Version,
		Nodes:     make([]string, len(s.Nodes)),
		Sequences: make([]string, len(s.Sequences)),
		Details:   len(s.Details),
		Sequence:  pose.Sequence,
		Detail:    s.SelectDetail(lod),
		Mesh:      rm.Viewer(),
	}
	for i := range view.Nodes {
		view.Nodes[i] = s.NodeName(i)
	}
	for i := range view.Sequences {
		view.Sequences[i] = s.SequenceName(i)
	}
	webutils.WriteJson(w, view)
}

func HandlerAjaxShapeRaw(w http.ResponseWriter, r *http.Request) {
	if s, err := loadShape(mux.Vars(r)["file"]); err != nil {
		webutils.WriteError(w, err)
	} else {
		webutils.WriteJson(w, s)
	}
}

func HandlerDumpShape(w http.ResponseWriter, r *http.Request) {
	if s, err := loadShape(mux.Vars(r)["file"]); err != nil {
		webutils.WriteError(w, err)
	} else {
		webutils.WriteText(w, utils.SDump(s))
	}
}

func HandlerGltfShape(w http.ResponseWriter, r *http.Request) {
	_, rm, _, _, ok := resolveShape(w, r)
	if !ok {
		return
	}
	writeGltf(w, rm, stem(mux.Vars(r)["file"]))
}

func renderInterior(w http.ResponseWriter, r *http.Request) (*dis.Interior, *common.RenderableMesh, bool) {
	file := mux.Vars(r)["file"]
	it, err := loadInterior(file)
	if err != nil {
		status.Error("Failed to load %s: %v", file, err)
		webutils.WriteError(w, err)
		return nil, nil, false
	}
	rm := it.Render(it.MaterialList, TextureSize)
	status.Diagnostics(file, rm.Diagnostics)
	return it, rm, true
}

func HandlerAjaxInterior(w http.ResponseWriter, r *http.Request) {
	it, rm, ok := renderInterior(w, r)
	if !ok {
		return
	}
	lod, geometry := it.SelectLOD()
	webutils.WriteJson(w, &InteriorView{
		Name:          mux.Vars(r)["file"],
		Version:       it.Version,
		LOD:           lod,
		Geometry:      geometry,
		Geometries:    it.GeometryNames(),
		MaterialLists: it.MaterialListNames(),
		Mesh:          rm.Viewer(),
	})
}

func HandlerGltfInterior(w http.ResponseWriter, r *http.Request) {
	_, rm, ok := renderInterior(w, r)
	if !ok {
		return
	}
	writeGltf(w, rm, stem(mux.Vars(r)["file"]))
}

func writeGltf(w http.ResponseWriter, rm *common.RenderableMesh, name string) {
	var buf bytes.Buffer
	if err := gltfutils.ExportBinary(&buf, rm.ExportGLTF(name, TEXTURES_PREFIX)); err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Failed to export gltf"))
		return
	}
	webutils.WriteFile(w, &buf, name+".glb")
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func HandlerStatusWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[web] ws upgrade error: %v", err)
		return
	}
	status.NewClient(conn)
}
