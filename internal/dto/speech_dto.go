package dto

type TTSRequest struct {
	Text  string `json:"text" validate:"required,max=4096"`
	Voice string `json:"voice" validate:"omitempty,oneof=alloy echo fable onyx nova shimmer"`
	Model string `json:"model" validate:"omitempty,oneof=tts-1 tts-1-hd"`
}

type TTSResponse struct {
	Success          bool    `json:"success"`
	AudioID          string  `json:"audio_id"`
	AudioURL         string  `json:"audio_url"`
	DurationEstimate float64 `json:"duration_estimate"`
	Message          string  `json:"message"`
}

type TranscriptResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type CleanupResponse struct {
	DeletedCount int    `json:"deleted_count"`
	Message      string `json:"message"`
}

// AudioURL is where a stored clip is served from
func AudioURL(audioID string) string {
	return "/api/tts/audio/" + audioID
}
