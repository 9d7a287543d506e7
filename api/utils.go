package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"TmhnaDash/api/constants"
	"TmhnaDash/internal/logger"
)

// Error response helper
func RespondWithError(w http.ResponseWriter, status int, errMsg string) {
	LogError("%s", errMsg)
	w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   errMsg,
	})
}

// RespondWithPayload writes payload as the JSON body. A failed response
// still carries the payload so prompts and field errors reach the page.
func RespondWithPayload(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		LogError("encode payload: %v", err)
	}
}

// RespondWithHTML writes a server-rendered fragment.
func RespondWithHTML(w http.ResponseWriter, status int, html string) {
	w.Header().Set(constants.ContentTypeText, constants.ContentTypeHTML)
	w.WriteHeader(status)
	if _, err := w.Write([]byte(html)); err != nil {
		LogError("write fragment: %v", err)
	}
}

// RespondWithFile sends body as a download named filename.
func RespondWithFile(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set(constants.ContentTypeText, contentType)
	w.Header().Set(constants.HeaderContentDisposition, fmt.Sprintf(constants.FormatAttachment, filename))
	if _, err := w.Write(body); err != nil {
		LogError("write download %s: %v", filename, err)
	}
}

// LogInfo logs an informational message (wrapper for consistent logging)
func LogInfo(msg string, args ...interface{}) {
	logger.WithFields(logrus.Fields{"component": "api"}).Infof(msg, args...)
}

// LogError logs an error message (wrapper for consistent logging)
func LogError(msg string, args ...interface{}) {
	logger.WithFields(logrus.Fields{"component": "api"}).Errorf(msg, args...)
}
