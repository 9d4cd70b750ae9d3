package models

import (
	"strings"
)

// Tone is the visual category applied to the result banner.
type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneSuccess Tone = "success"
	ToneDanger  Tone = "danger"
	ToneWarning Tone = "warning"
)

// FallbackMessage is shown for every transport failure.
const FallbackMessage = "An error occurred. Please try again."

// DomainErrorPrefix is prepended to errors reported by the prediction service.
const DomainErrorPrefix = "Error: "

// AlertClass maps a tone to its Bootstrap alert class.
func (t Tone) AlertClass() string {
	switch t {
	case ToneSuccess:
		return "alert-success"
	case ToneDanger:
		return "alert-danger"
	case ToneWarning:
		return "alert-warning"
	default:
		return "alert-secondary"
	}
}

// Banner is the result region shown under a prediction form.
// It holds no history: each submission overwrites it completely.
type Banner struct {
	Visible bool   `json:"visible"`
	Tone    Tone   `json:"tone"`
	Message string `json:"message"`
}

// NewBanner returns the hidden banner a page starts with.
func NewBanner() Banner {
	return Banner{Tone: ToneNeutral}
}

// OutcomeKind names the branch a submission ended in.
type OutcomeKind string

const (
	KindResult         OutcomeKind = "result"
	KindDomainError    OutcomeKind = "domain_error"
	KindTransportError OutcomeKind = "transport_error"
)

// Outcome is the result of one submission to the prediction service.
// It is one of Result, DomainError or TransportError.
type Outcome interface {
	Kind() OutcomeKind
}

// Result carries the verdict text returned by the service.
type Result struct {
	Text string
}

func (Result) Kind() OutcomeKind { return KindResult }

// DomainError is a well-formed response that reports a business error,
// e.g. a missing or non-numeric field.
type DomainError struct {
	Message string
}

func (DomainError) Kind() OutcomeKind { return KindDomainError }

func (e DomainError) Error() string { return e.Message }

// TransportError covers network failures and unparseable bodies.
// Err is for logs only and never reaches the page.
type TransportError struct {
	Err error
}

func (TransportError) Kind() OutcomeKind { return KindTransportError }

func (e TransportError) Error() string {
	if e.Err == nil {
		return "transport error"
	}
	return e.Err.Error()
}

func (e TransportError) Unwrap() error { return e.Err }

// RenderOutcome computes the banner for an outcome. The previous banner is
// never carried over, so a new outcome cannot inherit a stale tone.
//
// A result is classified by a case-sensitive substring check against the
// form's negative indicator: present means success, absent means danger.
func RenderOutcome(_ Banner, outcome Outcome, negativeIndicator string) Banner {
	switch o := outcome.(type) {
	case Result:
		tone := ToneDanger
		if strings.Contains(o.Text, negativeIndicator) {
			tone = ToneSuccess
		}
		return Banner{Visible: true, Tone: tone, Message: o.Text}
	case DomainError:
		return Banner{Visible: true, Tone: ToneWarning, Message: DomainErrorPrefix + o.Message}
	default:
		return Banner{Visible: true, Tone: ToneWarning, Message: FallbackMessage}
	}
}
