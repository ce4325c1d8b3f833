package cli

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/doeshing/maildraft/internal/ports"
)

// Clipboard implements ports.Clipboard by piping into the platform's
// clipboard utility.
type Clipboard struct {
	goos     string
	getenv   func(string) string
	lookPath func(string) (string, error)
	run      func(name string, args []string, stdin []byte) error
}

// NewClipboard builds the clipboard helper.
func NewClipboard() *Clipboard {
	return &Clipboard{
		goos:     runtime.GOOS,
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
		run: func(name string, args []string, stdin []byte) error {
			cmd := exec.Command(name, args...)
			cmd.Stdin = bytes.NewReader(stdin)
			return cmd.Run()
		},
	}
}

// Enabled reports whether the platform has a known clipboard utility.
func (c *Clipboard) Enabled() bool {
	switch c.goos {
	case "darwin", "linux", "windows":
		return true
	default:
		return false
	}
}

// Copy copies text to the system clipboard.
func (c *Clipboard) Copy(text string) error {
	if !c.Enabled() {
		return fmt.Errorf("clipboard not supported on %s", c.goos)
	}
	name, args, err := c.command()
	if err != nil {
		return err
	}
	return c.run(name, args, []byte(text))
}

func (c *Clipboard) command() (string, []string, error) {
	switch c.goos {
	case "darwin":
		return "pbcopy", nil, nil
	case "windows":
		return "clip", nil, nil
	}
	candidates := [][]string{{"xclip", "-selection", "clipboard"}, {"xsel", "--clipboard", "--input"}}
	if c.getenv("WAYLAND_DISPLAY") != "" {
		candidates = append([][]string{{"wl-copy"}}, candidates...)
	}
	for _, candidate := range candidates {
		if _, err := c.lookPath(candidate[0]); err == nil {
			return candidate[0], candidate[1:], nil
		}
	}
	return "", nil, fmt.Errorf("clipboard utilities not found (install xclip, xsel or wl-copy)")
}

var _ ports.Clipboard = (*Clipboard)(nil)
