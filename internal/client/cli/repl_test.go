package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	out      bytes.Buffer

	calls   []string
	flushes int
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	return nil
}

func (f *fakeExec) isLoggedIn() bool  { return f.loggedIn }
func (f *fakeExec) output() io.Writer { return &f.out }
func (f *fakeExec) flushToasts()      { f.flushes++ }

func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Register(context.Context) error { return f.record("register") }
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) Whoami(context.Context) error         { return f.record("whoami") }
func (f *fakeExec) Profile(context.Context) error        { return f.record("profile") }
func (f *fakeExec) Passwd(context.Context) error         { return f.record("passwd") }
func (f *fakeExec) Refresh(context.Context) error        { return f.record("refresh") }
func (f *fakeExec) Go(_ context.Context, l string) error { return f.record("go " + l) }
func (f *fakeExec) Feed(context.Context) error           { return f.record("feed") }
func (f *fakeExec) Like(_ context.Context, id string) error {
	return f.record("like " + id)
}
func (f *fakeExec) Post(context.Context) error { return f.record("post") }
func (f *fakeExec) Delete(_ context.Context, id string) error {
	return f.record("delete " + id)
}
func (f *fakeExec) Itineraries(context.Context) error { return f.record("itineraries") }
func (f *fakeExec) Itinerary(_ context.Context, id string) error {
	return f.record("itinerary " + id)
}
func (f *fakeExec) Create(context.Context) error { return f.record("create") }
func (f *fakeExec) Rate(_ context.Context, id, stars string) error {
	return f.record("rate " + id + " " + stars)
}
func (f *fakeExec) Unrate(_ context.Context, id string) error {
	return f.record("unrate " + id)
}
func (f *fakeExec) Follow(_ context.Context, id string) error {
	return f.record("follow " + id)
}
func (f *fakeExec) Search(_ context.Context, q string) error { return f.record("search " + q) }
func (f *fakeExec) Toasts(context.Context) error             { return f.record("toasts") }

func TestRunREPL_DispatchesCommands(t *testing.T) {
	input := strings.Join([]string{
		"help",
		"login",
		"help",
		"feed",
		"like 9",
		"rate 3 5",
		"search rio de janeiro",
		"go /itinerary/3",
		"follow 4",
		"",
		"foobar",
		"logout",
		"exit",
		"feed",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(status)" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{
		"login", "feed", "like 9", "rate 3 5", "search rio de janeiro",
		"go /itinerary/3", "follow 4", "logout",
	}, exec.calls)

	out := exec.out.String()
	assert.Contains(t, out, helpSignedOut)
	assert.Contains(t, out, helpSignedIn)
	assert.Contains(t, out, "Unknown command: foobar")
	assert.Contains(t, out, "guia (status)> ")
	assert.Contains(t, out, "Bye!")
	assert.Equal(t, 11, exec.flushes, "every non-empty command but exit flushes toasts")
}

func TestRunREPL_UsageAndEOF(t *testing.T) {
	input := "like\nrate 3\ndelete\ngo\nitinerary\nunrate\nfollow\nsearch"

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader(input)))

	assert.Empty(t, exec.calls)
	out := exec.out.String()
	for _, u := range []string{
		"like <postID>", "rate <id> <1-5>", "delete <postID>", "go <path>",
		"itinerary <id>", "unrate <id>", "follow <userID>", "search <query>",
	} {
		assert.Contains(t, out, "Usage: "+u)
	}
	assert.NotContains(t, out, "Bye!")
}

func TestRunREPL_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, bufio.NewReader(strings.NewReader("feed\n")))
	assert.Empty(t, exec.calls)
}
