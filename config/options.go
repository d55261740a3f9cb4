package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultUnitScale converts format units to the meters expected by modern tools.
const DefaultUnitScale = 0.01

type Options struct {
	Legacy      bool    `yaml:"legacy"`
	NoExpand    bool    `yaml:"no_expand"`
	GLTF        bool    `yaml:"gltf"`
	Encoding    string  `yaml:"encoding"`
	MirrorTable string  `yaml:"mirror_table"` // empty means the embedded table
	UnitScale   float64 `yaml:"unit_scale"`
	Verbose     bool    `yaml:"verbose"`
	Dump        bool    `yaml:"dump"`
}

func Default() *Options {
	return &Options{
		Encoding:  UTF8,
		UnitScale: DefaultUnitScale,
	}
}

// LoadFile reads yaml options on top of Default().
func LoadFile(path string) (*Options, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot read config %q", path)
	}

	o := Default()
	if err := yaml.Unmarshal(data, o); err != nil {
		return nil, errors.Wrapf(err, "Cannot parse config %q", path)
	}
	return o, nil
}

func (o *Options) Convention() Convention {
	if o.Legacy {
		return ConventionLegacy
	}
	return ConventionModern
}

// Mirrored reports whether left/right bone names are swapped on output.
func (o *Options) Mirrored() bool {
	return !o.Legacy
}

// Apply pushes process-wide settings (name encoding).
func (o *Options) Apply() error {
	return SetEncoding(o.Encoding)
}
