package web

import (
	"image"
	"image/png"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/mogaika/tribes_browser/config"
	"github.com/mogaika/tribes_browser/pack/dts"
)

func testServer(t *testing.T) *mux.Router {
	root := t.TempDir()
	cfg := config.Default()
	cfg.ShapesDir = filepath.Join(root, "shapes")
	cfg.InteriorsDir = filepath.Join(root, "interiors")
	cfg.TexturesDir = filepath.Join(root, "textures")
	cfg.WebDir = filepath.Join(root, "web")
	for _, dir := range []string{cfg.ShapesDir, cfg.InteriorsDir, cfg.TexturesDir} {
		if err := os.MkdirAll(dir, 0777); err != nil {
			t.Fatal(err)
		}
	}
	ioutil.WriteFile(filepath.Join(cfg.ShapesDir, "larmor.dts"), []byte("PERS broken"), 0666)
	ioutil.WriteFile(filepath.Join(cfg.ShapesDir, "notes.txt"), []byte("x"), 0666)
	ioutil.WriteFile(filepath.Join(cfg.InteriorsDir, "tower.DIS"), []byte("XXXX"), 0666)

	f, err := os.Create(filepath.Join(cfg.TexturesDir, "skin.png"))
	if err != nil {
		t.Fatal(err)
	}
	png.Encode(f, image.NewRGBA(image.Rect(0, 0, 64, 32)))
	f.Close()

	return NewRouter(cfg)
}

func get(r http.Handler, url string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", url, nil))
	return rec
}

func TestListings(t *testing.T) {
	r := testServer(t)
	for _, test := range []struct {
		url, body string
	}{
		{"/json/shapes", `["larmor.dts"]`},
		{"/json/interiors", `["tower.DIS"]`},
	} {
		rec := get(r, test.url)
		if rec.Code != http.StatusOK || rec.Body.String() != test.body {
			t.Errorf("%s: %d %q; expected %q", test.url, rec.Code, rec.Body.String(), test.body)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	r := testServer(t)
	for _, test := range []struct {
		url  string
		code int
	}{
		{"/json/shape/missing.dts", http.StatusNotFound},
		{"/json/shape/larmor.dts", http.StatusInternalServerError},
		{"/gltf/shape/LARMOR.DTS", http.StatusInternalServerError},
		{"/json/interior/tower.dis", http.StatusInternalServerError},
		{"/gltf/interior/other.dis", http.StatusNotFound},
	} {
		rec := get(r, test.url)
		if rec.Code != test.code || !strings.Contains(rec.Body.String(), `"error"`) {
			t.Errorf("%s: %d %q; expected %d", test.url, rec.Code, rec.Body.String(), test.code)
		}
	}
}

func TestTextureSize(t *testing.T) {
	testServer(t)
	if w, h, ok := TextureSize("skin.png"); !ok || w != 64 || h != 32 {
		t.Errorf("TextureSize(skin.png)=%d,%d,%v", w, h, ok)
	}
	if _, _, ok := TextureSize("nothing.png"); ok {
		t.Errorf("size of a missing texture")
	}
}

func TestShapeTextures(t *testing.T) {
	testServer(t)
	for _, test := range []struct {
		file    string
		in, out []string
	}{
		{"disc.dts", nil, []string{"disc.png"}},
		{"ammo1.dts", nil, []string{"ammo.png"}},
		{"ammo1.dts", []string{"a.png", "b.png"}, []string{"ammo.png", "b.png"}},
		{"disc.dts", []string{"a.png"}, []string{"a.png"}},
	} {
		got := shapeTextures(test.file, test.in)
		if strings.Join(got, ",") != strings.Join(test.out, ",") {
			t.Errorf("shapeTextures(%q, %v)=%v; expected %v", test.file, test.in, got, test.out)
		}
	}
}

func name(s string) (n dts.Name) {
	copy(n[:], s)
	return n
}

func TestShapeParams(t *testing.T) {
	s := &dts.Shape{
		Names:     []dts.Name{name("root"), name("Fire")},
		Sequences: []dts.Sequence{{NameIndex: 0}, {NameIndex: 1}},
		Details:   []dts.Detail{{Size: 10}, {Size: 40}},
	}
	for _, test := range []struct {
		query string
		pose  dts.Pose
		lod   dts.LOD
		fail  bool
	}{
		{"", dts.Pose{Sequence: 0}, dts.AutoLOD, false},
		{"?seq=fire&frame=last", dts.Pose{Sequence: 1, LastKeyFrame: true}, dts.AutoLOD, false},
		{"?seq=-1&detail=0", dts.DefaultPose, dts.LOD{Detail: 0}, false},
		{"?seq=walk", dts.Pose{}, dts.LOD{}, true},
		{"?detail=high", dts.Pose{}, dts.LOD{}, true},
	} {
		pose, lod, err := shapeParams(s, httptest.NewRequest("GET", "/json/shape/x.dts"+test.query, nil))
		if test.fail {
			if err == nil {
				t.Errorf("%q: expected error", test.query)
			}
			continue
		}
		if err != nil || pose != test.pose || lod != test.lod {
			t.Errorf("%q: %+v %+v %v; expected %+v %+v", test.query, pose, lod, err, test.pose, test.lod)
		}
	}
}
