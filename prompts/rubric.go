package prompts

// RubricData carries the rubric table and the essay to score against it.
type RubricData struct {
	Rubric string
	Essay  string
	Schema string
}

const rubricTemplate = `You are given a rubric in table format and a student essay. The rubric uses scoring levels (Excellent = 5, Good = 4, Adequate = 3, Needs Work = 2, Poor = 1). Each row is a different criterion. Match the essay to the most fitting description per row and assign a numeric score from 1 to 5. Return your output as a JSON array where each object has:
- criterion: name of the rubric row
- score: the numeric score from 1-5
- total: always 5
- details: a brief explanation of how you chose the score
{{- if .Schema }}

JSON schema of the array: {{ .Schema }}
{{- end }}

Rubric:
{{ .Rubric }}

Essay:
{{ .Essay }}

Return only the JSON array.`

// Rubric renders the scoring request.
func Rubric(data RubricData) (string, error) {
	return generateFromTemplate(rubricTemplate, data)
}
