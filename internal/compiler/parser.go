package compiler

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/postman/internal/dto"
)

// Parser converts raw scenario documents into dto.Scenario.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes a YAML (or JSON, which is valid YAML) scenario.
// Unknown keys are rejected so typos surface early.
func (p *Parser) Parse(data []byte) (*dto.Scenario, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("empty scenario document")
	}

	var sc dto.Scenario
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &sc,
		TagName:     "mapstructure",
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}

	if sc.Tree.ID == "" {
		return nil, fmt.Errorf("scenario tree missing root id")
	}
	return &sc, nil
}
