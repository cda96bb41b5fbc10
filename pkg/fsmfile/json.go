package fsmfile

import (
	"encoding/json"
	"fmt"

	"github.com/ha1tch/fsmview/pkg/fsm"
)

// ParseJSON parses and validates a description from JSON.
func ParseJSON(data []byte) (*fsm.Description, error) {
	var fd fileDescription
	if err := json.Unmarshal(data, &fd); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	return fd.toDescription()
}

// ToJSON converts a description to JSON.
func ToJSON(d *fsm.Description, pretty bool) ([]byte, error) {
	fd := fromDescription(d)
	if pretty {
		return json.MarshalIndent(fd, "", "  ")
	}
	return json.Marshal(fd)
}
