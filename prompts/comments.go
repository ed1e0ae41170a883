package prompts

// CommentsSystemPrompt frames the comment request.
const CommentsSystemPrompt = "You are a writing assistant. Read the student's essay and provide a set of short comment suggestions with a brief description and a longer explanation if needed."

// CommentsData carries the essay, the student's settings and the number of
// comments to ask for.
type CommentsData struct {
	Essay              string
	Tone               string
	Style              string
	CustomInstructions string
	Rubric             string
	Count              int
	Schema             string
}

const commentsTemplate = `You're helping improve a student's essay. Give extremely specific and paragraph-linked feedback. Each comment should:
- Reference a particular paragraph or quote directly.
- Address an actionable area for revision.
- Be useful even for high-quality essays.
Help them build on these settings, they are what they want their essay to feel like.

Student's settings:
Tone: {{ .Tone }}
Style: {{ .Style }}
Extra Instructions: {{ or .CustomInstructions "None" }}
Rubric: {{ or .Rubric "None" }}

Essay:
{{ .Essay }}

Return a JSON array of {{ .Count }} objects like:
[
  { "text": "Short, specific suggestion", "detail": "Expanded explanation and revision advice." }
]
{{- if .Schema }}
The array must match this JSON schema: {{ .Schema }}
{{- end }}
Do not include commentary or markdown.`

// Comments renders the user message of a comment request.
func Comments(data CommentsData) (string, error) {
	return generateFromTemplate(commentsTemplate, data)
}
