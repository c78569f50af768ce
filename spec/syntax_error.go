package spec

import "fmt"

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.message)
}

var (
	// lexical errors
	synErrInvalidToken  = newSyntaxError("invalid token")
	synErrUnclosedQuote = newSyntaxError("unclosed quotation")
	synErrEmptyPattern  = newSyntaxError("a pattern must not be empty")

	// syntax errors
	synErrNoProduction     = newSyntaxError("a grammar must have at least one production")
	synErrNoProductionName = newSyntaxError("a production name is missing")
	synErrNoColon          = newSyntaxError("the colon must precede alternatives")
	synErrNoSemicolon      = newSyntaxError("the semicolon is missing at the last of an alternative")
	synErrUnknownDirective = newSyntaxError("unknown directive")
	synErrNoDirectiveParam = newSyntaxError("a directive needs a parameter")
	synErrUnexpectedToken  = newSyntaxError("unexpected token")
)
