package helpers

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptForConfirmation asks a y/N question. Anything but an explicit yes,
// including EOF, declines.
func PromptForConfirmation(out io.Writer, reader *bufio.Reader, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return isAffirmativeResponse(strings.ToLower(strings.TrimSpace(line)))
}

func isAffirmativeResponse(response string) bool {
	return response == "y" || response == "yes"
}
