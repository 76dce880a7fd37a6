package registry

import "fmt"

// Property describes one parameter of a task schema.
type Property struct {
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
	Items       *Property `json:"items,omitempty"`
}

// Schema is the JSON-Schema subset the registry exposes to the LLM's
// tool-calling API. All task schemas are closed objects:
// additionalProperties is always false, so unknown arguments are rejected.
type Schema struct {
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties bool                `json:"additionalProperties"`
}

// ObjectSchema builds a closed object schema from properties and the list of
// required parameter names.
func ObjectSchema(props map[string]Property, required ...string) Schema {
	if props == nil {
		props = map[string]Property{}
	}
	return Schema{
		Type:                 "object",
		Properties:           props,
		Required:             required,
		AdditionalProperties: false,
	}
}

// Validate checks arguments extracted from a tool call against the schema.
// Unknown parameters are rejected, required parameters are enforced, and
// value types must match the declared property types. task names the schema
// owner for error reporting.
func (s Schema) Validate(task string, args map[string]any) error {
	var problems []string

	for name := range args {
		if _, ok := s.Properties[name]; !ok {
			problems = append(problems, fmt.Sprintf("unknown parameter %q", name))
		}
	}

	for _, name := range s.Required {
		if _, ok := args[name]; !ok {
			problems = append(problems, fmt.Sprintf("missing required parameter %q", name))
		}
	}

	for name, value := range args {
		prop, ok := s.Properties[name]
		if !ok {
			continue
		}
		if problem := checkType(name, prop, value); problem != "" {
			problems = append(problems, problem)
		}
	}

	if len(problems) > 0 {
		return &ArgumentError{Task: task, Problems: problems}
	}
	return nil
}

// checkType validates a single argument value against its declared property.
// Numeric values arrive as float64 from JSON decoding.
func checkType(name string, prop Property, value any) string {
	switch prop.Type {
	case "string":
		str, ok := value.(string)
		if !ok {
			return fmt.Sprintf("parameter %q must be a string", name)
		}
		if len(prop.Enum) > 0 {
			for _, allowed := range prop.Enum {
				if str == allowed {
					return ""
				}
			}
			return fmt.Sprintf("parameter %q must be one of %v", name, prop.Enum)
		}
	case "number":
		if _, ok := value.(float64); !ok {
			return fmt.Sprintf("parameter %q must be a number", name)
		}
	case "integer":
		f, ok := value.(float64)
		if !ok || f != float64(int64(f)) {
			return fmt.Sprintf("parameter %q must be an integer", name)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Sprintf("parameter %q must be a boolean", name)
		}
	case "array":
		items, ok := value.([]any)
		if !ok {
			return fmt.Sprintf("parameter %q must be an array", name)
		}
		if prop.Items != nil {
			for i, item := range items {
				if problem := checkType(fmt.Sprintf("%s[%d]", name, i), *prop.Items, item); problem != "" {
					return problem
				}
			}
		}
	}
	return ""
}
