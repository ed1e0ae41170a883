// Package prompts holds the text sent to the completion service.
package prompts

import (
	"bytes"
	"text/template"
)

// generateFromTemplate is a generic function that generates a prompt from any template and data.
func generateFromTemplate[T any](templateString string, data T) (string, error) {
	tmpl, err := template.New("prompt").Parse(templateString)
	if err != nil {
		return "", err
	}
	var prompt bytes.Buffer
	if err := tmpl.Execute(&prompt, data); err != nil {
		return "", err
	}
	return prompt.String(), nil
}
