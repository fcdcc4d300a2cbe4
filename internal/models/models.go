package models

// Aspect is a coarse three-way bucketing of an image's width/height ratio.
type Aspect string

const (
	AspectPortrait  Aspect = "portrait"
	AspectLandscape Aspect = "landscape"
	AspectSquare    Aspect = "square"
)

// Valid reports whether a is one of the three known aspect classes.
func (a Aspect) Valid() bool {
	switch a {
	case AspectPortrait, AspectLandscape, AspectSquare:
		return true
	}
	return false
}

// NormalizedImage is the unit of exchange throughout the session engine.
// Data holds the encoded bytes as base64 with no data-URL prefix.
// ID is a millisecond unix timestamp rendered as a string; it is assigned
// once at creation and doubles as the recency key for history ordering.
type NormalizedImage struct {
	ID       string `json:"id"`
	Data     string `json:"data"`
	MimeType string `json:"mime_type"`
	Aspect   Aspect `json:"aspect"`
	Favorite bool   `json:"favorite,omitempty"`
}

// SessionState is the durable, user-visible state of a try-on session.
type SessionState struct {
	Model        *NormalizedImage  `json:"model,omitempty"`
	Garment      *NormalizedImage  `json:"garment,omitempty"`
	History      []NormalizedImage `json:"history,omitempty"`
	ActiveResult *NormalizedImage  `json:"active_result,omitempty"`
	Prompt       string            `json:"prompt,omitempty"`
}

// Clone returns a deep copy so listeners and handlers can hold a snapshot
// without observing later mutations.
func (s SessionState) Clone() SessionState {
	out := SessionState{Prompt: s.Prompt}
	if s.Model != nil {
		m := *s.Model
		out.Model = &m
	}
	if s.Garment != nil {
		g := *s.Garment
		out.Garment = &g
	}
	if s.ActiveResult != nil {
		r := *s.ActiveResult
		out.ActiveResult = &r
	}
	if len(s.History) > 0 {
		out.History = make([]NormalizedImage, len(s.History))
		copy(out.History, s.History)
	}
	return out
}
