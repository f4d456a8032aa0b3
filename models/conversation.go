package models

// ConversationTurn is a single message in the chat history. The window is
// owned by the caller and passed in with each request; the server keeps no
// conversation state between requests.
type ConversationTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// WebSource is one external search snippet used as chat evidence.
type WebSource struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}
