package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/doeshing/maildraft/internal/domain"
)

// ErrGenerationFailed matches, via errors.Is, the error RenderResult returns
// for an error result.
var ErrGenerationFailed = errors.New("generation failed")

type failedResultError struct {
	message string
}

func (e *failedResultError) Error() string { return e.message }

func (e *failedResultError) Is(target error) bool { return target == ErrGenerationFailed }

// RenderResult prints a generation result. Plain mode prints only the email
// body; JSON mode prints the structured result in both outcomes. An error
// result is returned as an error matching ErrGenerationFailed whose text is
// the result message.
func RenderResult(out io.Writer, result domain.GenerationResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else if result.OK() {
		fmt.Fprintln(out, result.Email)
	}
	if !result.OK() {
		return &failedResultError{message: result.Message}
	}
	return nil
}
