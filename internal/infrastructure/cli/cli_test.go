package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/maildraft/internal/app"
	"github.com/doeshing/maildraft/internal/domain"
)

type recordingClipboard struct {
	copied []string
}

func (c *recordingClipboard) Copy(text string) error {
	c.copied = append(c.copied, text)
	return nil
}

func (c *recordingClipboard) Enabled() bool { return true }

// newBackendContainer wires a container whose backend is a shell script that
// prints the readiness marker, and whose endpoint is an httptest server.
func newBackendContainer(t *testing.T, handler http.HandlerFunc) *app.Container {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	script := filepath.Join(dir, "backend.sh")
	require.NoError(t, os.WriteFile(script, []byte("echo '"+domain.DefaultBackendReadyMarker+"'\nexec sleep 30\n"), 0o755))

	cfg := fmt.Sprintf(`data_dir: %s
backend:
  interpreter: sh
  script: %s
  endpoint: %s
  startup_timeout: 5s
  request_timeout: 5s
`, filepath.Join(dir, "data"), script, srv.URL)
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))

	c, err := app.BuildContainer(context.Background(), app.Options{ConfigPath: cfgPath})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = c.Close(ctx)
	})
	return c
}

func execute(t *testing.T, c *app.Container, clip *recordingClipboard, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCommand(c, clip)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootGeneratesAndRecordsHistory(t *testing.T) {
	c := newBackendContainer(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Prompt  string              `json:"prompt"`
			Context domain.EmailContext `json:"context"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Context.Recipient != "" {
			fmt.Fprintf(w, `{"status":"success","email":"Hi %s, thanks!"}`, body.Context.Recipient)
			return
		}
		_, _ = w.Write([]byte(`{"status":"success","email":"Thanks!"}`))
	})
	clip := &recordingClipboard{}

	out, err := execute(t, c, clip, "--json", "Write", "a", "thank-you", "note")
	require.NoError(t, err)
	var result domain.GenerationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, domain.Success("Thanks!"), result)
	assert.Equal(t, domain.BackendReady, c.Supervisor.State())

	out, err = execute(t, c, clip, "generate", "--recipient", "Ana", "--copy", "Thank Ana")
	require.NoError(t, err)
	assert.Equal(t, "Hi Ana, thanks!\n", out)
	assert.Equal(t, []string{"Hi Ana, thanks!"}, clip.copied)

	entries := c.Assistant.LoadHistory(context.Background())
	require.Len(t, entries, 2)
	assert.Equal(t, "Thank Ana", entries[0].Prompt)
	assert.Equal(t, "Write a thank-you note", entries[1].Prompt)
}

func TestRootReportsBackendError(t *testing.T) {
	c := newBackendContainer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","message":"model not loaded"}`))
	})

	out, err := execute(t, c, nil, "generate", "hello")
	require.ErrorIs(t, err, ErrGenerationFailed)
	assert.Contains(t, err.Error(), "model not loaded")
	assert.Empty(t, out)
	assert.Empty(t, c.Assistant.LoadHistory(context.Background()))
}

func TestRenderResult(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RenderResult(&out, domain.Success("Dear Sam"), false))
	assert.Equal(t, "Dear Sam\n", out.String())

	out.Reset()
	err := RenderResult(&out, domain.Failure(errors.New("backend down")), true)
	require.ErrorIs(t, err, ErrGenerationFailed)
	assert.JSONEq(t, `{"status":"error","message":"backend down"}`, out.String())
}

func TestPromptFromInput(t *testing.T) {
	prompt, err := promptFromInput([]string{"ask", "for", "leave"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ask for leave", prompt)

	prompt, err = promptFromInput(nil, strings.NewReader("piped prompt\n"))
	require.NoError(t, err)
	assert.Equal(t, "piped prompt\n", prompt)
}

func TestClipboardCommandSelection(t *testing.T) {
	available := map[string]bool{}
	var ran []string
	clip := &Clipboard{
		goos:   "linux",
		getenv: func(string) string { return "" },
		lookPath: func(name string) (string, error) {
			if available[name] {
				return "/usr/bin/" + name, nil
			}
			return "", exec.ErrNotFound
		},
		run: func(name string, args []string, stdin []byte) error {
			ran = append(ran, name+" "+strings.Join(args, " ")+" <- "+string(stdin))
			return nil
		},
	}

	assert.Error(t, clip.Copy("x"))

	available["xsel"] = true
	require.NoError(t, clip.Copy("hello"))
	assert.Equal(t, []string{"xsel --clipboard --input <- hello"}, ran)

	clip.getenv = func(string) string { return "wayland-0" }
	available["wl-copy"] = true
	require.NoError(t, clip.Copy("again"))
	assert.Equal(t, "wl-copy  <- again", ran[1])

	clip.goos = "plan9"
	assert.False(t, clip.Enabled())
	assert.Error(t, clip.Copy("x"))
}

func TestSpinnerStartStop(t *testing.T) {
	var buf safeBuffer
	s := NewSpinner(&buf, "Drafting")
	s.interval = time.Millisecond
	s.Start()
	time.Sleep(10 * time.Millisecond)
	s.Stop()
	s.Stop()

	assert.Contains(t, buf.String(), "Drafting")
	assert.True(t, strings.HasSuffix(buf.String(), "\r\033[K"))

	var nilSpinner *Spinner
	nilSpinner.Start()
	nilSpinner.Stop()
}

func TestConfigAndVersionRunOnInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("data_dir: "+dir+"\nhistory:\n  driver: postgres\n"), 0o600))

	runRoot := func(args ...string) (string, error) {
		root, c := NewRootCmd(Options{ConfigPath: cfgPath})
		t.Cleanup(func() { _ = c.Close(context.Background()) })
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs(args)
		err := root.ExecuteContext(context.Background())
		return out.String(), err
	}

	out, err := runRoot("version")
	require.NoError(t, err)
	assert.Contains(t, out, "maildraft version")

	out, err = runRoot("config", "path")
	require.NoError(t, err)
	assert.Equal(t, cfgPath+"\n", out)

	_, err = runRoot("config", "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
	assert.Contains(t, err.Error(), "postgres")

	_, err = runRoot("history", "list")
	require.Error(t, err)
}
