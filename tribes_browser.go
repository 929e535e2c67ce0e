package main

import (
	"flag"
	"log"

	"github.com/mogaika/tribes_browser/config"
	"github.com/mogaika/tribes_browser/web"
)

func main() {
	var cfgPath, addr, shapes, interiors, textures, webDir, encoding string
	var listEncodings, saveConfig bool
	flag.StringVar(&cfgPath, "config", "tribes_browser.yaml", "Path to yaml config")
	flag.StringVar(&addr, "i", "", "Address of server")
	flag.StringVar(&shapes, "shapes", "", "Path to folder with .dts files")
	flag.StringVar(&interiors, "interiors", "", "Path to folder with .dis/.dig/.dml files")
	flag.StringVar(&textures, "textures", "", "Path to folder with converted .png textures")
	flag.StringVar(&webDir, "web", "", "Path to viewer web files")
	flag.StringVar(&encoding, "encoding", "", "Code page of names inside game files")
	flag.BoolVar(&listEncodings, "encodings", false, "List supported code pages and exit")
	flag.BoolVar(&saveConfig, "save", false, "Write resulting config back to -config and exit")
	flag.Parse()

	if listEncodings {
		for _, name := range config.ListEncodings() {
			log.Println(name)
		}
		return
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.Addr = addr
		case "shapes":
			cfg.ShapesDir = shapes
		case "interiors":
			cfg.InteriorsDir = interiors
		case "textures":
			cfg.TexturesDir = textures
		case "web":
			cfg.WebDir = webDir
		case "encoding":
			cfg.Encoding = encoding
		}
	})

	if err := config.SetEncoding(cfg.Encoding); err != nil {
		log.Fatal(err)
	}

	if saveConfig {
		if err := cfg.Save(cfgPath); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := web.StartServer(cfg); err != nil {
		log.Fatal(err)
	}
}
