package notify

import (
	"github.com/charmbracelet/log"
)

// LogSink reports notifications as log lines.
type LogSink struct {
	Logger *log.Logger
}

// NewLogSink creates a sink writing to logger.
func NewLogSink(logger *log.Logger) *LogSink {
	return &LogSink{Logger: logger}
}

// Add logs the new notification and returns a handle that logs each change.
func (s *LogSink) Add(title string) Handle {
	l := s.Logger.With("task", title)
	l.Debug("notification created")
	return &logHandle{logger: l}
}

type logHandle struct {
	logger *log.Logger
	text   string
	state  State
}

func (h *logHandle) SetText(text string) {
	h.text = text
	h.emit()
}

func (h *logHandle) SetState(state State) {
	if state == h.state {
		return
	}
	h.state = state
	h.emit()
}

func (h *logHandle) emit() {
	switch h.state {
	case Fail:
		h.logger.Error(h.text, "state", h.state)
	case Success:
		h.logger.Info(h.text, "state", h.state)
	default:
		h.logger.Debug(h.text, "state", h.state)
	}
}

func (h *logHandle) Expire() {}

var _ Sink = (*LogSink)(nil)
