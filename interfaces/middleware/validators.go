package middleware

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"subtitle-credit/domain/model"
	"subtitle-credit/infrastructure/clients/youtube"
)

var (
	videoExtensions = map[string]struct{}{".mp4": {}, ".mov": {}, ".avi": {}, ".mkv": {}, ".webm": {}}
	fileNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	assColour       = regexp.MustCompile(`^&H[0-9A-Fa-f]{8}$`)
)

// RegisterValidators installs the request tags used by the dto and model bindings.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	for tag, fn := range map[string]validator.Func{
		"video_url":            validVideoURL,
		"file_name":            validFileName,
		"translation_language": validTranslationLanguage,
		"subtitle_font":        validSubtitleFont,
		"ass_colour":           validASSColour,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// validVideoURL accepts direct links to a video file and YouTube video links.
func validVideoURL(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if _, ok := youtube.VideoID(raw); ok {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	_, ok := videoExtensions[strings.ToLower(path.Ext(u.Path))]
	return ok
}

func validFileName(fl validator.FieldLevel) bool {
	return fileNamePattern.MatchString(fl.Field().String())
}

func validTranslationLanguage(fl validator.FieldLevel) bool {
	return model.IsTranslationLanguage(fl.Field().String())
}

func validSubtitleFont(fl validator.FieldLevel) bool {
	return model.IsSubtitleFont(fl.Field().String())
}

func validASSColour(fl validator.FieldLevel) bool {
	return assColour.MatchString(fl.Field().String())
}
