package morpheme

import (
	_ "embed"
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed mirror.yaml
var defaultMirrorYaml []byte

// MirrorTable swaps left/right bone names so a skeleton authored for one
// handedness plays back on the other.
type MirrorTable map[string]string

func ParseMirrorTable(data []byte) (MirrorTable, error) {
	var t MirrorTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrapf(err, "Failed to parse mirror table")
	}
	return t, nil
}

func LoadMirrorTable(path string) (MirrorTable, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read mirror table %q", path)
	}
	return ParseMirrorTable(data)
}

func DefaultMirrorTable() MirrorTable {
	t, err := ParseMirrorTable(defaultMirrorYaml)
	if err != nil {
		panic(err)
	}
	return t
}

func (t MirrorTable) Mirror(name string) (string, error) {
	if m, ok := t[name]; ok {
		return m, nil
	}
	return "", errors.Wrapf(ErrUnknownMirrorBone, "%q", name)
}
