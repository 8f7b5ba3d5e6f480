package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is an optional YAML file overriding the agent settings.
// Unset keys keep the environment values.
//
//	model: gpt-5-mini
//	tool_call_limit: 2
//	strict_schema: true
//	answer_phase: true
//	dropped_call_policy: reject
//	fields:
//	  zip_code: true
//	  price: true
//	  square_footage: false
//	  bedrooms: true
//	  property_type: true
//	tool_instructions: |
//	  ...
type Profile struct {
	Model              string        `yaml:"model"`
	ToolCallLimit      *int          `yaml:"tool_call_limit"`
	StrictSchema       *bool         `yaml:"strict_schema"`
	AnswerPhase        *bool         `yaml:"answer_phase"`
	DroppedCallPolicy  string        `yaml:"dropped_call_policy"`
	Fields             *FieldsConfig `yaml:"fields"`
	ToolInstructions   string        `yaml:"tool_instructions"`
	AnswerInstructions string        `yaml:"answer_instructions"`
}

// LoadProfile reads and parses a profile file
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent profile %s: %w", path, err)
	}
	return ParseProfile(data)
}

// ParseProfile parses profile YAML
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse agent profile: %w", err)
	}
	return &p, nil
}

// Apply overlays the profile onto cfg
func (p *Profile) Apply(cfg *Config) {
	if p.Model != "" {
		cfg.OpenAI.Model = p.Model
	}
	if p.ToolCallLimit != nil {
		cfg.Agent.ToolCallLimit = *p.ToolCallLimit
	}
	if p.StrictSchema != nil {
		cfg.Agent.StrictSchema = *p.StrictSchema
	}
	if p.AnswerPhase != nil {
		cfg.Agent.AnswerPhase = *p.AnswerPhase
	}
	if p.DroppedCallPolicy != "" {
		cfg.Agent.DroppedCallPolicy = p.DroppedCallPolicy
	}
	if p.Fields != nil {
		cfg.Agent.Fields = *p.Fields
	}
	if p.ToolInstructions != "" {
		cfg.Agent.ToolInstructions = p.ToolInstructions
	}
	if p.AnswerInstructions != "" {
		cfg.Agent.AnswerInstructions = p.AnswerInstructions
	}
}
