package engine

// Kind classifies why an analysis could not produce a scored result.
// Collaborator failures are deliberately absent: corpus and search errors
// degrade to empty candidate lists and the pipeline continues.
type Kind int

const (
	// KindInvalidInput means the request carried no analyzable text.
	KindInvalidInput Kind = iota
	// KindRateLimited means the admission window was full.
	KindRateLimited
	// KindTimeout means the outer deadline fired at a suspension point.
	KindTimeout
	// KindInternal covers unexpected failures inside the pipeline.
	KindInternal
)

// Error is the tagged failure variant returned by Analyze. The Message is
// safe to surface to users verbatim.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func invalidInputError() *Error {
	return &Error{Kind: KindInvalidInput, Message: "invalid post data: text is required"}
}

func rateLimitedError() *Error {
	return &Error{Kind: KindRateLimited, Message: "rate limit exceeded, please wait a minute and try again"}
}

func timeoutError() *Error {
	return &Error{Kind: KindTimeout, Message: "analysis took too long"}
}

func internalError(msg string) *Error {
	if msg == "" {
		msg = "unable to analyze post due to technical error"
	}
	return &Error{Kind: KindInternal, Message: msg}
}
