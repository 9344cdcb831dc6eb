// Package classify turns raw journal events into typed tasks. Classification
// is a pure function of the payload: unknown event codes and payloads that
// fail validation are ignored rather than failing the page.
package classify

import (
	"encoding/json"

	perr "gcsbridge/internal/platform/errors"
)

// Kind is the closed set of task kinds
type Kind int

const (
	// Ignored events are skipped without processing
	Ignored Kind = iota

	// Translate is a fresh translation request
	Translate

	// ReTranslate is a rejected translation being re-queued with a direct asset URL
	ReTranslate
)

// String implements fmt.Stringer
func (k Kind) String() string {
	switch k {
	case Translate:
		return "TRANSLATE"
	case ReTranslate:
		return "RE_TRANSLATE"
	default:
		return "IGNORED"
	}
}

// Payload is the GCS event body. AssetName and AssetURL are only present on
// retranslation events, where they are mandatory.
type Payload struct {
	EventCode    string `json:"eventCode" validate:"required"`
	ProjectID    string `json:"projectId" validate:"required"`
	TaskID       string `json:"taskId" validate:"required"`
	TenantID     string `json:"tenantId" validate:"required"`
	SourceLocale string `json:"sourceLocale" validate:"required"`
	TargetLocale string `json:"targetLocale" validate:"required"`
	AssetName    string `json:"assetName" validate:"required_if=EventCode RE_TRANSLATE"`
	AssetURL     string `json:"assetUrl" validate:"required_if=EventCode RE_TRANSLATE"`
}

// Task is one actionable (or ignored) unit of work derived from an event.
// Locale tags are kept exactly as the event carried them: GCS matches asset
// URLs against its own strings and expects them back verbatim in API paths.
type Task struct {
	Kind          Kind
	OriginEventID string

	ProjectID    string
	TaskID       string
	TenantID     string
	SourceLocale string
	TargetLocale string

	// retranslation only
	AssetName string
	AssetURL  string
}

// Classify maps a raw event body onto a Task. The returned error is
// diagnostic only: callers log it and treat the task as Ignored, because one
// bad event must never block the rest of the page.
func Classify(eventID string, body []byte) (Task, error) {
	ignored := Task{Kind: Ignored, OriginEventID: eventID}

	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return ignored, perr.Wrap(err, perr.ErrorCodeMalformed, "event body undecodable")
	}

	var kind Kind
	switch p.EventCode {
	case "TRANSLATE":
		kind = Translate
	case "RE_TRANSLATE":
		kind = ReTranslate
	default:
		// not an error: the journal carries event codes this connector does not own
		return ignored, nil
	}

	if err := Validate(&p); err != nil {
		return ignored, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "event payload incomplete")
	}

	return Task{
		Kind:          kind,
		OriginEventID: eventID,
		ProjectID:     p.ProjectID,
		TaskID:        p.TaskID,
		TenantID:      p.TenantID,
		SourceLocale:  p.SourceLocale,
		TargetLocale:  p.TargetLocale,
		AssetName:     p.AssetName,
		AssetURL:      p.AssetURL,
	}, nil
}
