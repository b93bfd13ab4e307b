package controller

import (
	"errors"

	"voice-shopping-be/internal/pkg/serverutils"
	"voice-shopping-be/internal/repository/filesystem"
	"voice-shopping-be/internal/service"
	"voice-shopping-be/pkg/speech"
)

// serviceError turns known service errors into HTTP errors. Anything else
// is left for the error handler to render as a 500.
func serviceError(err error) error {
	switch {
	case errors.Is(err, speech.ErrNotConfigured):
		return serverutils.Unavailable(err.Error())
	case errors.Is(err, speech.ErrEmptyText),
		errors.Is(err, speech.ErrTextTooLong),
		errors.Is(err, speech.ErrUnknownVoice),
		errors.Is(err, speech.ErrEmptyAudio),
		errors.Is(err, service.ErrEmptyQuery),
		errors.Is(err, filesystem.ErrInvalidAudioID):
		return serverutils.BadRequest(err.Error())
	case errors.Is(err, filesystem.ErrAudioNotFound),
		errors.Is(err, service.ErrProductNotFound):
		return serverutils.NotFound(err.Error())
	}
	return err
}
