package ast

import (
	"encoding/json"
	"fmt"
	"os"
)

// DecodeModule parses a surface module from its JSON encoding.
func DecodeModule(data []byte) (*Module, error) {
	var m Module
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse module: %v", err)
	}
	return &m, nil
}

// LoadModule reads and parses a surface module from a JSON file.
func LoadModule(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeModule(data)
}

// FindFunction returns the named function of the module, or nil.
func (m *Module) FindFunction(name string) *Function {
	for i := range m.Functions {
		if m.Functions[i].Name == name {
			return &m.Functions[i]
		}
	}
	return nil
}
