package scan

// RootKey is the DirectoryMap key of the scanned root itself
const RootKey = "/"

// DirectoryMap maps slash-separated directory paths, relative to the scan
// root, to the names of the plain files directly inside them. Keys keep the
// order in which directories were discovered; parents precede children.
type DirectoryMap struct {
	keys  []string
	files map[string][]string
}

func newDirectoryMap() *DirectoryMap {
	return &DirectoryMap{files: make(map[string][]string)}
}

// register adds an empty entry for key unless one exists
func (m *DirectoryMap) register(key string) {
	if _, ok := m.files[key]; ok {
		return
	}
	m.keys = append(m.keys, key)
	m.files[key] = []string{}
}

func (m *DirectoryMap) addFile(key, name string) {
	m.files[key] = append(m.files[key], name)
}

// Keys returns the directory keys in discovery order
func (m *DirectoryMap) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Files returns the file names of a directory; ok is false for unknown keys
func (m *DirectoryMap) Files(key string) (files []string, ok bool) {
	f, ok := m.files[key]
	if !ok {
		return nil, false
	}
	return append([]string{}, f...), true
}

// Len returns the number of directories
func (m *DirectoryMap) Len() int {
	return len(m.keys)
}

// TotalFiles returns the number of files across all directories
func (m *DirectoryMap) TotalFiles() int {
	total := 0
	for _, f := range m.files {
		total += len(f)
	}
	return total
}
