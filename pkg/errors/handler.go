package errors

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Handler writes errors to the error-reporting sink and, when a
// structured logger is attached, mirrors them there at error severity.
type Handler struct {
	out    io.Writer
	logger *logrus.Logger
}

// NewHandler creates a handler writing to stderr.
func NewHandler() *Handler {
	return &Handler{out: os.Stderr}
}

// WithLogger attaches a structured logger that mirrors handled errors.
func (h *Handler) WithLogger(logger *logrus.Logger) *Handler {
	h.logger = logger
	return h
}

// Handle reports the error to all attached sinks. Nil errors are ignored.
func (h *Handler) Handle(err error) {
	if err == nil {
		return
	}

	fmt.Fprintf(h.out, "githook-seclog: %v\n", err)

	if h.logger == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		h.logger.WithFields(logrus.Fields{
			"code":     string(appErr.Code),
			"severity": string(appErr.Severity),
		}).Error(appErr.Message)
		return
	}
	h.logger.Error(err.Error())
}
