package domain

// Result statuses returned to the UI host.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// EmailContext carries optional hints forwarded to the backend.
type EmailContext struct {
	Recipient      string `json:"recipient,omitempty"`
	Tone           string `json:"tone,omitempty"`
	Style          string `json:"style,omitempty"`
	SenderName     string `json:"sender_name,omitempty"`
	AdditionalInfo string `json:"additional_info,omitempty"`
}

// Merge fills empty fields of c from fallback.
func (c EmailContext) Merge(fallback EmailContext) EmailContext {
	if c.Recipient == "" {
		c.Recipient = fallback.Recipient
	}
	if c.Tone == "" {
		c.Tone = fallback.Tone
	}
	if c.Style == "" {
		c.Style = fallback.Style
	}
	if c.SenderName == "" {
		c.SenderName = fallback.SenderName
	}
	if c.AdditionalInfo == "" {
		c.AdditionalInfo = fallback.AdditionalInfo
	}
	return c
}

// GenerateRequest is a single generation call from the host.
type GenerateRequest struct {
	Prompt  string
	Context EmailContext
}

// GenerationResult is the structured outcome handed back to the host; it is
// never replaced by a bare error.
type GenerationResult struct {
	Status  string `json:"status"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the result has success status.
func (r GenerationResult) OK() bool {
	return r.Status == StatusSuccess
}

// Success builds a success result.
func Success(email string) GenerationResult {
	return GenerationResult{Status: StatusSuccess, Email: email}
}

// Failure builds an error result from err.
func Failure(err error) GenerationResult {
	return GenerationResult{Status: StatusError, Message: err.Error()}
}
