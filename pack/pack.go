package pack

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/tribes_browser/utils"
	"github.com/mogaika/tribes_browser/vfs"
)

type FileLoader func(src utils.ResourceSource, data []byte) (interface{}, error)

var gHandlers map[string]FileLoader = make(map[string]FileLoader, 0)

func SetHandler(format string, ldr FileLoader) {
	gHandlers[strings.ToUpper(format)] = ldr
}

func HasHandler(name string) bool {
	_, found := gHandlers[strings.ToUpper(filepath.Ext(name))]
	return found
}

func CallHandler(s utils.ResourceSource, data []byte) (interface{}, error) {
	ext := strings.ToUpper(filepath.Ext(s.Name()))

	if h, found := gHandlers[ext]; found {
		return h(s, data)
	} else {
		return nil, errors.Errorf("[pack] Cannot find handler for '%s' extension", ext)
	}
}

type PackResSrc struct {
	name string
	size int64
	d    vfs.Directory
}

func (s *PackResSrc) Name() string {
	return s.name
}

func (s *PackResSrc) Size() int64 {
	return s.size
}

func (s *PackResSrc) Sibling(name string) ([]byte, error) {
	return vfs.ReadFile(s.d, name)
}

func GetInstanceHandler(d vfs.Directory, fileName string) (interface{}, error) {
	data, err := vfs.ReadFile(d, fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "[pack] Cannot get file '%s'", fileName)
	}

	inst, err := CallHandler(&PackResSrc{d: d, name: fileName, size: int64(len(data))}, data)
	if err != nil {
		return nil, errors.Wrapf(err, "[pack] Handler error")
	}

	return inst, nil
}
