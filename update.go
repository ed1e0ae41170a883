package penpal

type UpdateType string

const (
	UpdateTyping      UpdateType = "typing"
	UpdateRefreshing  UpdateType = "refreshing"
	UpdatePartialText UpdateType = "partial_text"
	UpdateEnd         UpdateType = "end"
	UpdateError       UpdateType = "error"
	UpdateComments    UpdateType = "comments"
	UpdateRubric      UpdateType = "rubric"
	UpdateReset       UpdateType = "reset"
)

// Update is a notification from the session to whatever renders it. Content
// depends on Type: the reply so far for partial_text, the error text for
// error, "true" or "false" for typing and refreshing.
type Update struct {
	Type       UpdateType
	Content    string
	ExchangeID string
}

// Observer receives updates synchronously on the goroutine that produced
// them. It must not call back into the session.
type Observer func(Update)
