package cli

import (
	"fmt"
	"os"

	"github.com/aretw0/postman/internal/compiler"
	"github.com/aretw0/postman/internal/validator"
)

// LoadScenario reads, validates and compiles a scenario file.
func LoadScenario(path string) (*compiler.Compiled, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	sc, err := compiler.NewParser().Parse(data)
	if err != nil {
		return nil, err
	}
	if err := validator.ValidateScenario(sc); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return compiler.Compile(sc)
}
