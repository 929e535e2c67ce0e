package utils

// ResourceSource is the file a loader is decoding, plus access to the files
// stored next to it. Interiors keep their geometry and materials in sibling files.
type ResourceSource interface {
	Name() string
	Size() int64
	Sibling(name string) ([]byte, error)
}
