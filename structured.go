package penpal

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/invopop/jsonschema"
)

const fence = "```"

// StripFence removes a markdown code fence around a model answer:
// a leading "```" with an optional language tag and a trailing "```".
func StripFence(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, fence) {
		s = strings.TrimLeftFunc(s[len(fence):], unicode.IsLetter)
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}

// parseJSONArray decodes a model answer that should hold a JSON array of T.
func parseJSONArray[T any](content string) ([]T, error) {
	var items []T
	if err := json.Unmarshal([]byte(StripFence(content)), &items); err != nil {
		return nil, fmt.Errorf("failed to decode JSON array: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schema
}

// schemaText renders the JSON schema of T for inclusion in a prompt.
func schemaText[T any]() string {
	data, err := json.Marshal(GenerateSchema[T]())
	if err != nil {
		return ""
	}
	return string(data)
}
