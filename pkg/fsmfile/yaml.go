package fsmfile

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ha1tch/fsmview/pkg/fsm"
)

// ParseYAML parses and validates a description from YAML.
func ParseYAML(data []byte) (*fsm.Description, error) {
	var fd fileDescription
	if err := yaml.Unmarshal(data, &fd); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return fd.toDescription()
}

// ToYAML converts a description to YAML.
func ToYAML(d *fsm.Description) ([]byte, error) {
	return yaml.Marshal(fromDescription(d))
}
