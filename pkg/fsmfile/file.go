package fsmfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ha1tch/fsmview/pkg/fsm"
)

// Format is a description file format.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ErrUnknownFormat is returned for file extensions with no known format.
var ErrUnknownFormat = errors.New("unknown description format")

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// Parse decodes and validates a description.
func Parse(data []byte, format Format) (*fsm.Description, error) {
	switch format {
	case FormatJSON:
		return ParseJSON(data)
	case FormatYAML:
		return ParseYAML(data)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
}

// Marshal encodes a description.
func Marshal(d *fsm.Description, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ToJSON(d, true)
	case FormatYAML:
		return ToYAML(d)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
}

// Load reads a description file, choosing the format from its extension.
func Load(path string) (*fsm.Description, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Save writes a description, choosing the format from the extension.
func Save(path string, d *fsm.Description) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(d, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// fileDescription is the on-disk shape shared by JSON and YAML. Required
// fields are pointers so that missing values can be told apart from zero.
type fileDescription struct {
	Name   string      `json:"name,omitempty" yaml:"name,omitempty"`
	States []fileState `json:"states" yaml:"states"`
}

type fileState struct {
	ID            *int             `json:"id" yaml:"id"`
	X             *float64         `json:"x" yaml:"x"`
	Y             *float64         `json:"y" yaml:"y"`
	Label         string           `json:"label,omitempty" yaml:"label,omitempty"`
	Final         bool             `json:"final,omitempty" yaml:"final,omitempty"`
	Start         bool             `json:"start,omitempty" yaml:"start,omitempty"`
	SelfLink      string           `json:"self_link,omitempty" yaml:"self_link,omitempty"`
	SelfLinkAngle *float64         `json:"self_link_angle,omitempty" yaml:"self_link_angle,omitempty"`
	Transitions   []fileTransition `json:"transitions,omitempty" yaml:"transitions,omitempty"`
}

type fileTransition struct {
	To    *int   `json:"to" yaml:"to"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// toDescription checks required fields and builds a validated description.
func (fd *fileDescription) toDescription() (*fsm.Description, error) {
	d := fsm.New(fd.Name)
	for i, fs := range fd.States {
		switch {
		case fs.ID == nil:
			return nil, missing(fmt.Sprintf("state #%d", i), "id")
		case fs.X == nil:
			return nil, missing(fmt.Sprintf("state %d", *fs.ID), "x")
		case fs.Y == nil:
			return nil, missing(fmt.Sprintf("state %d", *fs.ID), "y")
		}

		s := fsm.State{
			ID:            *fs.ID,
			X:             *fs.X,
			Y:             *fs.Y,
			Label:         fs.Label,
			Final:         fs.Final,
			Start:         fs.Start,
			SelfLink:      fs.SelfLink,
			SelfLinkAngle: fs.SelfLinkAngle,
		}
		for j, ft := range fs.Transitions {
			if ft.To == nil {
				return nil, missing(fmt.Sprintf("state %d transition #%d", s.ID, j), "to")
			}
			s.Transitions = append(s.Transitions, fsm.Transition{To: *ft.To, Label: ft.Label})
		}
		// appended directly so Validate sees duplicate ids
		d.States = append(d.States, s)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func missing(where, field string) error {
	return fmt.Errorf("%w: %s: missing required field %q", fsm.ErrInvalidDescription, where, field)
}

func fromDescription(d *fsm.Description) fileDescription {
	fd := fileDescription{Name: d.Name, States: make([]fileState, 0, len(d.States))}
	for _, s := range d.States {
		s := s
		fs := fileState{
			ID:            &s.ID,
			X:             &s.X,
			Y:             &s.Y,
			Label:         s.Label,
			Final:         s.Final,
			Start:         s.Start,
			SelfLink:      s.SelfLink,
			SelfLinkAngle: s.SelfLinkAngle,
		}
		for _, t := range s.Transitions {
			t := t
			fs.Transitions = append(fs.Transitions, fileTransition{To: &t.To, Label: t.Label})
		}
		fd.States = append(fd.States, fs)
	}
	return fd
}
