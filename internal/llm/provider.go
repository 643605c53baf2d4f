package llm

import "context"

// Provider is the core abstraction for model interaction.
// Consumers call Generate with a Request and receive the reply text.
type Provider interface {
	// Generate sends the conversation to the model and returns its reply.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is an optional system instruction. Models that reject system
	// instructions (Gemma) get their persona as the first user turn instead.
	System string

	// Messages is the conversation, oldest first.
	Messages []Message

	// MaxTokens is the maximum number of tokens in the response.
	// Zero leaves the provider default in place.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	// Zero leaves the provider default in place.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Images are sent alongside Content in the same turn.
	Images []Image `json:"images,omitempty"`
}

// Image is inline binary image data.
type Image struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserText is a shorthand for a text-only user turn.
func UserText(s string) Message {
	return Message{Role: RoleUser, Content: s}
}

// AssistantText is a shorthand for a text-only model turn.
func AssistantText(s string) Message {
	return Message{Role: RoleAssistant, Content: s}
}

// Response holds the model's output.
type Response struct {
	// Text is the reply exactly as the model produced it.
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "safety"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
