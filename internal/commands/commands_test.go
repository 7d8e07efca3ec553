package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	http "github.com/bogdanfinn/fhttp"

	"github.com/diogo/pulsechat/internal/api"
	"github.com/diogo/pulsechat/internal/chat"
	"github.com/diogo/pulsechat/internal/config"
	apierrors "github.com/diogo/pulsechat/internal/errors"
	"github.com/diogo/pulsechat/internal/models"
	"github.com/diogo/pulsechat/internal/tui"
)

// offlineDoer fails every request so no test reaches the network.
type offlineDoer struct{}

func (offlineDoer) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("offline")
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []any
	clients  int
	err      error
}

func (p *fakePublisher) Publish(_ context.Context, message any) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return 0, p.err
	}
	p.messages = append(p.messages, message)
	return p.clients, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

type testDeps struct {
	*Dependencies
	out       *bytes.Buffer
	err       *bytes.Buffer
	completer *api.MockCompleter
	copied    []string
	home      string
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()
	home := t.TempDir()
	t.Setenv("PULSECHAT_HOME", home)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("PULSECHAT_API_BASE", "")
	t.Setenv("GLAMOUR_STYLE", "")

	td := &testDeps{
		out:       &bytes.Buffer{},
		err:       &bytes.Buffer{},
		completer: &api.MockCompleter{Reply: "On it!"},
		home:      home,
	}
	deps := NewDependencies()
	deps.Out = td.out
	deps.Err = td.err
	deps.NewClient = func(cfg config.Config, _ *slog.Logger) (*api.Client, error) {
		return api.NewClient(api.WithBaseURL(cfg.APIBase), api.WithHTTPClient(offlineDoer{}))
	}
	deps.Completer = td.completer
	deps.IsTTY = func() bool { return false }
	deps.Clipboard = func(text string) error {
		td.copied = append(td.copied, text)
		return nil
	}
	deps.OpenLog = func() (io.WriteCloser, error) { return nopWriteCloser{io.Discard}, nil }
	deps.RunTUI = func(context.Context, *chat.Engine, ...tui.Option) error {
		t.Fatal("unexpected TUI run")
		return nil
	}
	td.Dependencies = deps
	return td
}

func (td *testDeps) run(t *testing.T, args ...string) error {
	t.Helper()
	root := NewRootCmd(td.Dependencies)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func (td *testDeps) reset() {
	td.out.Reset()
	td.err.Reset()
}

func TestRootCmd_Structure(t *testing.T) {
	root := NewRootCmd(newTestDeps(t).Dependencies)

	want := []string{"chat", "send", "inject", "history", "serve", "config"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	for _, flag := range []string{"verbose", "storage", "api-base"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestRootCmd_Version(t *testing.T) {
	td := newTestDeps(t)
	if err := td.run(t, "--version"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := td.out.String(); !strings.HasPrefix(got, "pulsechat "+Version) {
		t.Errorf("version output = %q", got)
	}
}

func TestSend_Raw(t *testing.T) {
	td := newTestDeps(t)
	if err := td.run(t, "send", "alex", "any", "luck?"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got := td.out.String(); got != "On it!\n" {
		t.Errorf("output = %q, want %q", got, "On it!\n")
	}

	reqs := td.completer.Requests()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(reqs))
	}
	turns := reqs[0].Messages
	last := turns[len(turns)-1]
	if last.Role != "user" || last.Content != "any luck?" {
		t.Errorf("last turn = %+v", last)
	}
	if !strings.Contains(reqs[0].Persona, "Alex Rivera") {
		t.Error("request persona is not Alex's")
	}
}

func TestSend_PersistsBothMessages(t *testing.T) {
	td := newTestDeps(t)
	if err := td.run(t, "send", "jordan-kim", "deck ready?"); err != nil {
		t.Fatalf("send: %v", err)
	}
	td.reset()

	if err := td.run(t, "history", "show", "jordan"); err != nil {
		t.Fatalf("history show: %v", err)
	}
	out := td.out.String()
	for _, want := range []string{"Jordan Kim", "deck ready?", "On it!"} {
		if !strings.Contains(out, want) {
			t.Errorf("history missing %q:\n%s", want, out)
		}
	}
}

func TestSend_FailureUsesFallback(t *testing.T) {
	td := newTestDeps(t)
	td.completer.Err = apierrors.NewAPIError(500, models.EndpointChat, "boom")

	if err := td.run(t, "send", "1", "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got := strings.TrimSpace(td.out.String()); got != models.FallbackReply {
		t.Errorf("output = %q, want fallback", got)
	}
}

func TestSend_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown conversation", []string{"send", "nobody", "hi"}, "no conversation matches"},
		{"blank message", []string{"send", "alex", "   "}, "message cannot be empty"},
		{"index out of range", []string{"send", "9", "hi"}, "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			td := newTestDeps(t)
			err := td.run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
			if len(td.completer.Requests()) != 0 {
				t.Error("completer should not be called")
			}
		})
	}
}

func TestSend_CopiesToClipboard(t *testing.T) {
	td := newTestDeps(t)
	cfg := config.DefaultConfig()
	cfg.CopyToClipboard = true
	if err := config.SaveConfig(cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}

	if err := td.run(t, "send", "sarah", "status?"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(td.copied) != 1 || td.copied[0] != "On it!" {
		t.Errorf("copied = %v", td.copied)
	}
}

func TestSend_Decorated(t *testing.T) {
	td := newTestDeps(t)
	td.IsTTY = func() bool { return true }

	if err := td.run(t, "send", "sarah", "status?"); err != nil {
		t.Fatalf("send: %v", err)
	}
	out := td.out.String()
	if !strings.Contains(out, "Sarah Chen") || !strings.Contains(out, "On it!") {
		t.Errorf("decorated output missing name or reply:\n%s", out)
	}
	if !strings.Contains(td.err.String(), "Delivered") {
		t.Errorf("spinner did not finish on stderr: %q", td.err.String())
	}
}

func TestInject_AddMessage(t *testing.T) {
	td := newTestDeps(t)
	pub := &fakePublisher{clients: 2}
	td.Publisher = pub

	if err := td.run(t, "inject", "alex", "Found", "it", "--time", "9:15 AM"); err != nil {
		t.Fatalf("inject: %v", err)
	}
	if len(pub.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.messages))
	}
	action, ok := pub.messages[0].(chat.Action)
	if !ok {
		t.Fatalf("published %T, want chat.Action", pub.messages[0])
	}
	if action.Type != chat.ActionAddMessage || action.Payload.ConversationID != "alex-rivera" ||
		action.Payload.Text != "Found it" || action.Payload.Time != "9:15 AM" {
		t.Errorf("action = %+v", action)
	}
	if got := td.out.String(); !strings.Contains(got, "to 2 client(s)") {
		t.Errorf("output = %q", got)
	}
}

func TestInject_Typing(t *testing.T) {
	td := newTestDeps(t)
	pub := &fakePublisher{clients: 1}
	td.Publisher = pub

	if err := td.run(t, "inject", "sarah", "--typing"); err != nil {
		t.Fatalf("inject: %v", err)
	}
	action := pub.messages[0].(chat.Action)
	if action.Type != chat.ActionTriggerTyping || action.Payload.Duration != 2000 {
		t.Errorf("action = %+v", action)
	}

	data, err := json.Marshal(action)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"conversationId":"sarah-chen"`) {
		t.Errorf("wire form = %s", data)
	}
}

func TestInject_Errors(t *testing.T) {
	td := newTestDeps(t)
	td.Publisher = &fakePublisher{err: errors.New("relay down")}

	if err := td.run(t, "inject", "alex"); err == nil || !strings.Contains(err.Error(), "message cannot be empty") {
		t.Errorf("no text: err = %v", err)
	}
	if err := td.run(t, "inject", "alex", "hi"); err == nil || !strings.Contains(err.Error(), "relay down") {
		t.Errorf("publish failure: err = %v", err)
	}
}

func TestHistoryList(t *testing.T) {
	td := newTestDeps(t)
	if err := td.run(t, "history", "list"); err != nil {
		t.Fatalf("history list: %v", err)
	}
	out := td.out.String()
	for _, want := range []string{"NAME", "sarah-chen", "Alex Rivera", "Product Designer"} {
		if !strings.Contains(out, want) {
			t.Errorf("list missing %q:\n%s", want, out)
		}
	}
}

func TestHistoryReset(t *testing.T) {
	td := newTestDeps(t)
	if err := td.run(t, "send", "alex", "zebra canary"); err != nil {
		t.Fatalf("send: %v", err)
	}

	t.Run("declined", func(t *testing.T) {
		td.reset()
		root := NewRootCmd(td.Dependencies)
		root.SetIn(strings.NewReader("n\n"))
		root.SetArgs([]string{"history", "reset"})
		if err := root.Execute(); err != nil {
			t.Fatalf("reset: %v", err)
		}
		if !strings.Contains(td.out.String(), "Cancelled.") {
			t.Errorf("output = %q", td.out.String())
		}
		td.reset()
		_ = td.run(t, "history", "show", "alex")
		if !strings.Contains(td.out.String(), "zebra canary") {
			t.Error("history was reset despite declining")
		}
	})

	t.Run("confirmed", func(t *testing.T) {
		td.reset()
		if err := td.run(t, "history", "reset", "--yes"); err != nil {
			t.Fatalf("reset: %v", err)
		}
		td.reset()
		_ = td.run(t, "history", "show", "alex")
		if strings.Contains(td.out.String(), "zebra canary") {
			t.Error("history still holds the sent message after reset")
		}
	})
}

func TestHistoryExport(t *testing.T) {
	td := newTestDeps(t)

	if err := td.run(t, "history", "export", "sarah", "-f", "json"); err != nil {
		t.Fatalf("export: %v", err)
	}
	var conv models.Conversation
	if err := json.Unmarshal(td.out.Bytes(), &conv); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if conv.ID != "sarah-chen" || conv.Persona != "" || len(conv.Messages) == 0 {
		t.Errorf("exported = %+v", conv)
	}

	path := filepath.Join(t.TempDir(), "sarah.md")
	if err := td.run(t, "history", "export", "sarah", "-o", path, "--persona"); err != nil {
		t.Fatalf("export to file: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Sarah Chen") {
		t.Errorf("markdown export missing name:\n%s", data)
	}

	if err := td.run(t, "history", "export", "sarah", "-f", "yaml"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestConfigInitAndShow(t *testing.T) {
	td := newTestDeps(t)

	if err := td.run(t, "config", "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	path := filepath.Join(td.home, "config.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	if err := td.run(t, "config", "init"); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second init: err = %v", err)
	}
	if err := td.run(t, "config", "init", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}

	td.reset()
	if err := td.run(t, "--storage", "memory", "config", "show"); err != nil {
		t.Fatalf("show: %v", err)
	}
	out := td.out.String()
	if !strings.Contains(out, path) || !strings.Contains(out, `"driver": "memory"`) {
		t.Errorf("show output:\n%s", out)
	}
}

func TestChat_SelectsConversation(t *testing.T) {
	td := newTestDeps(t)
	var active string
	var gotOpts int
	td.RunTUI = func(_ context.Context, engine *chat.Engine, opts ...tui.Option) error {
		active = engine.ActiveID()
		gotOpts = len(opts)
		return nil
	}

	if err := td.run(t, "--storage", "memory", "chat", "jordan", "--plain"); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if active != "jordan-kim" {
		t.Errorf("active = %q, want jordan-kim", active)
	}
	if gotOpts != 3 {
		t.Errorf("tui options = %d, want 3", gotOpts)
	}
}

func TestChat_UnknownTheme(t *testing.T) {
	td := newTestDeps(t)
	err := td.run(t, "--storage", "memory", "chat", "--theme", "solarized")
	if err == nil || !strings.Contains(err.Error(), "tokyonight") {
		t.Errorf("err = %v, want the available theme list", err)
	}
}

func TestConfigThemes(t *testing.T) {
	td := newTestDeps(t)
	if err := td.run(t, "config", "themes"); err != nil {
		t.Fatalf("themes: %v", err)
	}
	out := td.out.String()
	for _, want := range []string{"* ", "tokyonight", "nord", "dracula", "notty"} {
		if !strings.Contains(out, want) {
			t.Errorf("themes output missing %q:\n%s", want, out)
		}
	}
}

func TestChat_InvalidRelay(t *testing.T) {
	td := newTestDeps(t)
	td.RunTUI = func(context.Context, *chat.Engine, ...tui.Option) error { return nil }

	err := td.run(t, "--storage", "memory", "chat", "--relay", "http://localhost:3000/ws")
	if err == nil {
		t.Fatal("expected an error for a non-websocket relay URL")
	}
}

func TestServe_ProductionWithoutDir(t *testing.T) {
	td := newTestDeps(t)
	missing := filepath.Join(t.TempDir(), "dist")

	err := td.run(t, "serve", "--production", "--dir", missing, "--env-file", "")
	if err == nil || !strings.Contains(err.Error(), "serve directory does not exist") {
		t.Errorf("err = %v", err)
	}
}

func TestFormatErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{"nil", nil, nil},
		{"api", apierrors.NewAPIError(502, "/api/chat", "bad gateway"), []string{"HTTP Status: 502", "Endpoint: /api/chat"}},
		{"network", apierrors.NewNetworkErrorWithEndpoint("complete", "/api/chat", errors.New("refused")), []string{"pulsechat serve"}},
		{"timeout", apierrors.NewTimeoutError("slow"), []string{"request_timeout_seconds"}},
		{"storage", apierrors.NewStorageError("set", models.DataKey, errors.New("disk full")), []string{"config show"}},
		{"config", errors.New("failed to parse config file: bad"), []string{"config init --force"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatErrorMessage(tt.err, "Error")
			if tt.err == nil {
				if got != "" {
					t.Errorf("got %q for nil error", got)
				}
				return
			}
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("missing %q in %q", want, got)
				}
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"a longer line", 8, "a longer..."},
		{"héllo wörld", 5, "héllo..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
