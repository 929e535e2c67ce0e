package web

import (
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"sync"

	_ "golang.org/x/image/bmp"
)

type texSize struct {
	w, h int
	ok   bool
}

var textureSizes sync.Map

// TextureSize reports the pixel size of a file in the textures directory.
// Results are cached for the life of the process.
func TextureSize(name string) (int, int, bool) {
	if v, ok := textureSizes.Load(name); ok {
		s := v.(texSize)
		return s.w, s.h, s.ok
	}
	s := readTextureSize(filepath.Join(ServerConfig.TexturesDir, filepath.Base(name)))
	textureSizes.Store(name, s)
	return s.w, s.h, s.ok
}

func readTextureSize(path string) texSize {
	f, err := os.Open(path)
	if err != nil {
		return texSize{}
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return texSize{}
	}
	return texSize{w: cfg.Width, h: cfg.Height, ok: true}
}
