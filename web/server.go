package web

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mogaika/tribes_browser/config"
	"github.com/mogaika/tribes_browser/vfs"
)

var (
	ServerConfig    *config.Config
	ShapesDirectory vfs.Directory
	InteriorsDir    vfs.Directory
)

func NewRouter(cfg *config.Config) *mux.Router {
	ServerConfig = cfg
	ShapesDirectory = vfs.NewDirectoryDriver(cfg.ShapesDir)
	InteriorsDir = vfs.NewDirectoryDriver(cfg.InteriorsDir)

	r := mux.NewRouter()
	r.HandleFunc("/json/shapes", HandlerAjaxShapes)
	r.HandleFunc("/json/interiors", HandlerAjaxInteriors)
	r.HandleFunc("/json/shape/{file}", HandlerAjaxShape)
	r.HandleFunc("/json/shape/{file}/raw", HandlerAjaxShapeRaw)
	r.HandleFunc("/json/interior/{file}", HandlerAjaxInterior)
	r.HandleFunc("/dump/shape/{file}", HandlerDumpShape)
	r.HandleFunc("/gltf/shape/{file}", HandlerGltfShape)
	r.HandleFunc("/gltf/interior/{file}", HandlerGltfInterior)
	r.HandleFunc("/ws/status", HandlerStatusWebsocket)

	r.PathPrefix(TEXTURES_PREFIX).Handler(
		http.StripPrefix(TEXTURES_PREFIX, http.FileServer(http.Dir(cfg.TexturesDir))))
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(filepath.Join(cfg.WebDir, "data"))))
	return r
}

func StartServer(cfg *config.Config) error {
	r := NewRouter(cfg)

	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(r)
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", cfg.Addr)

	return http.ListenAndServe(cfg.Addr, h)
}
