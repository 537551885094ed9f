package runner

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"gopkg.in/yaml.v2"

	"dev.opstack.ecs-run-task/internal/domain"
)

// LoadTaskDefinition reads the definition document, prunes empty values
// and output-only attributes, and converts the result into a
// registration request. The cleaned document is returned as JSON so the
// caller can emit it for diagnostics when registration is rejected.
//
// YAML and JSON documents are both accepted; JSON parses as a YAML
// subset.
func LoadTaskDefinition(path, workspace string) (*ecs.RegisterTaskDefinitionInput, []byte, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(workspace, path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, domain.Parsef("reading task definition %s: %v", path, err)
	}

	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, nil, domain.Parsef("parsing task definition %s: %v", path, err)
	}

	cleaned := domain.CleanDocument(doc)
	cleanedJSON, err := json.Marshal(cleaned)
	if err != nil {
		return nil, nil, domain.Parsef("encoding task definition %s: %v", path, err)
	}

	var input ecs.RegisterTaskDefinitionInput
	if err := json.Unmarshal(cleanedJSON, &input); err != nil {
		return nil, nil, domain.Parsef("task definition %s does not describe a registrable definition: %v", path, err)
	}
	if input.Family == nil || *input.Family == "" {
		return nil, nil, domain.Parsef("task definition %s is missing a family name", path)
	}

	return &input, cleanedJSON, nil
}
