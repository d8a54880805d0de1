package controller

import (
	"fmt"

	"github.com/1broseidon/monofocus/internal/i18n"
)

// StatusKind classifies the monitor detection line.
type StatusKind int

const (
	StatusDetecting StatusKind = iota
	StatusDetected
	StatusNoMonitors
	StatusDetectFailed
	StatusInitFailed
)

// Status is shown in place of the monitor count. It is localized only when
// displayed so a language switch relabels it without a fetch.
type Status struct {
	Kind  StatusKind
	Count int
	Err   error
}

// Text returns the status line in lang.
func (s Status) Text(lang i18n.Lang) string {
	switch s.Kind {
	case StatusDetected:
		return fmt.Sprintf("%s %d %s", i18n.T(lang, i18n.Detected), s.Count, i18n.T(lang, i18n.Monitors))
	case StatusNoMonitors:
		return i18n.T(lang, i18n.NoMonitors)
	case StatusDetectFailed:
		return withErr(i18n.T(lang, i18n.DetectFailed), s.Err)
	case StatusInitFailed:
		return withErr(i18n.T(lang, i18n.InitFailed), s.Err)
	default:
		return i18n.T(lang, i18n.Detecting)
	}
}

// Failed reports whether the last fetch failed.
func (s Status) Failed() bool {
	return s.Kind == StatusDetectFailed || s.Kind == StatusInitFailed
}

func withErr(label string, err error) string {
	if err == nil {
		return label
	}
	return fmt.Sprintf("%s: %v", label, err)
}
