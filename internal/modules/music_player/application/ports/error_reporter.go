package ports

// ErrorReporter delivers unexpected failures to the bot operator.
type ErrorReporter interface {
	// Report records err raised by the named source. trace may be nil.
	Report(source string, err error, trace []byte)

	// Recover reports a panic in progress. It must be deferred directly.
	Recover(source string)
}
