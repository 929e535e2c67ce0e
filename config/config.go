package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
	"gopkg.in/yaml.v3"
)

// Config describes where the browser finds game files and how it serves them.
type Config struct {
	Addr         string `yaml:"addr"`
	ShapesDir    string `yaml:"shapes_dir"`
	InteriorsDir string `yaml:"interiors_dir"`
	TexturesDir  string `yaml:"textures_dir"`
	WebDir       string `yaml:"web_dir"`
	Encoding     string `yaml:"encoding"`

	// model file stem -> texture file, for shapes whose skin does not share their name
	TextureMappings map[string]string `yaml:"texture_mappings"`
}

func Default() *Config {
	return &Config{
		Addr:         ":5000",
		ShapesDir:    filepath.Join("tools", "dts_files"),
		InteriorsDir: filepath.Join("tools", "interiors"),
		TexturesDir:  filepath.Join("static", "textures"),
		WebDir:       "web",
		Encoding:     charmap.Windows1252.String(),
		TextureMappings: map[string]string{
			"ammo1":    "ammo.png",
			"grenadel": "grenade.png",
			"mine":     "r_mine1.png",
		},
	}
}

// Load reads a yaml config on top of Default. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "Failed to read config %q", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "Failed to parse config %q", path)
	}
	return cfg, nil
}

func (cfg *Config) Save(path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrapf(err, "Failed to marshal config")
	}
	return errors.Wrapf(ioutil.WriteFile(path, data, 0666), "Failed to write config %q", path)
}

// MappedTexture returns the configured skin for a model file stem, if any.
func (cfg *Config) MappedTexture(stem string) (string, bool) {
	t, ok := cfg.TextureMappings[strings.ToLower(stem)]
	return t, ok
}

// TextureFor returns the skin texture for a model file stem.
func (cfg *Config) TextureFor(stem string) string {
	if t, ok := cfg.MappedTexture(stem); ok {
		return t
	}
	return stem + ".png"
}

var currentCharMap *charmap.Charmap = charmap.Windows1252

func SetEncoding(name string) error {
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			if cm.String() == name {
				currentCharMap = cm
				return nil
			}
		}
	}
	return errors.Errorf("Failed to find encoding %q", name)
}

func ListEncodings() []string {
	list := make([]string, 0)
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			list = append(list, cm.String())
		}
	}
	return list
}

func GetEncoding() *charmap.Charmap {
	return currentCharMap
}
