package domain

// VoiceEventKind discriminates voice capture events.
type VoiceEventKind string

const (
	VoiceTranscript VoiceEventKind = "transcript"
	VoiceError      VoiceEventKind = "error"
	VoiceEnd        VoiceEventKind = "end"
)

// VoiceEvent is one item of a recording's event stream. A stream may end
// without any transcript, and an error event may or may not be followed by
// further events before the end.
type VoiceEvent struct {
	Kind VoiceEventKind
	Text string
	Err  error
}
