package routes

import (
	"context"
	"io"
	"net/http"

	"amigella/cmd/internal/service"
	"amigella/cmd/internal/utils"
	"amigella/cmd/internal/utils/apierror"
	"github.com/labstack/echo/v4"
)

type VoiceService interface {
	Transcribe(ctx context.Context, userID int, audio []byte, filename string, force bool) (*service.VoiceIntakeResponse, apierror.ErrorResponse)
	GetVoiceLogs(userID int) ([]*service.VoiceLogResponse, apierror.ErrorResponse)
}

type DefaultVoiceRoute struct {
	VoiceService VoiceService
}

func NewVoiceDefault(voiceService VoiceService) *DefaultVoiceRoute {
	return &DefaultVoiceRoute{VoiceService: voiceService}
}

// Transcribe accepts a multipart form with an "audio" file and runs the
// voice intake pipeline.
func (v *DefaultVoiceRoute) Transcribe(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return c.JSON(apierror.NoAudioError.Code(), apierror.NoAudioError)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(apierror.NoAudioError.Code(), apierror.NoAudioError)
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		return c.JSON(500, apierror.InternalServerError)
	}

	force := c.FormValue("force") == "true"

	resp, apierr := v.VoiceService.Transcribe(c.Request().Context(), data.UserID, audio, fileHeader.Filename, force)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (v *DefaultVoiceRoute) GetVoiceLogs(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(401, apierror.InvalidAuthTokenError)
	}

	logs, apierr := v.VoiceService.GetVoiceLogs(data.UserID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"voice_logs": logs}
	return c.JSON(http.StatusOK, &resp)
}
