package dto

// Voice socket message types
const (
	VoiceTypeAudio      = "audio"
	VoiceTypeStop       = "stop"
	VoiceTypePing       = "ping"
	VoiceTypeQuery      = "query"
	VoiceTypeTranscript = "transcript"
	VoiceTypeAnswer     = "answer"
	VoiceTypePong       = "pong"
	VoiceTypeError      = "error"
	VoiceTypeNotice     = "notice"
)

// VoiceClientMessage is anything the browser sends on /ws/voice
type VoiceClientMessage struct {
	Type     string `json:"type"`
	Data     string `json:"data,omitempty"` // base64 audio chunk
	Language string `json:"language,omitempty"`
	Text     string `json:"text,omitempty"`
	Speak    bool   `json:"speak,omitempty"` // also answer, with audio
}

type VoiceServerMessage struct {
	Type     string         `json:"type"`
	Text     string         `json:"text,omitempty"`
	IsFinal  bool           `json:"is_final,omitempty"`
	Language string         `json:"language,omitempty"`
	Message  string         `json:"message,omitempty"`
	Answer   *QueryResponse `json:"answer,omitempty"`
}
