package llm

// Role identifies who a conversation message is attributed to.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a completion conversation.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is what every caller in this module sends: a message
// list plus the decoding knobs the prompts here care about.
type CompletionRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// CompletionResponse carries the generated text. Callers ground, screen,
// and translate the text; nothing here consumes usage metadata.
type CompletionResponse struct {
	Content string
}

// maxTokens applies the default completion budget when the request does
// not set one.
func maxTokens(req CompletionRequest) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return 1024
}
