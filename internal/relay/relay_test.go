package relay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comigor/jargone-go/internal/dispatcher"
	"github.com/comigor/jargone-go/internal/history"
)

type fakeSource struct {
	name      string
	available bool
	text      string
	err       error
	reads     int
}

func (f *fakeSource) Name() string    { return f.name }
func (f *fakeSource) Available() bool { return f.available }
func (f *fakeSource) Read(context.Context) (string, error) {
	f.reads++
	return f.text, f.err
}

func TestRelay_FirstAvailableSourceWins(t *testing.T) {
	ctx := context.Background()
	missing := &fakeSource{name: "a"}
	first := &fakeSource{name: "b", available: true, text: "net-net"}
	second := &fakeSource{name: "c", available: true, text: "unused"}

	got := New(missing, first, second).Selection(ctx)
	require.Equal(t, "net-net", got)
	require.Zero(t, missing.reads)
	require.Zero(t, second.reads)
}

func TestRelay_EmptyCases(t *testing.T) {
	ctx := context.Background()

	require.Equal(t, "", New().Selection(ctx), "no sources")
	require.Equal(t, "", New(&fakeSource{}).Selection(ctx), "nothing available")
	require.Equal(t, "", New(&fakeSource{available: true, err: errors.New("denied")}).Selection(ctx))
	// an available source with no selection does not fall through
	empty := &fakeSource{available: true}
	require.Equal(t, "", New(empty, &fakeSource{available: true, text: "x"}).Selection(ctx))
}

func TestStaticAndReader(t *testing.T) {
	ctx := context.Background()
	require.False(t, Static("").Available())
	require.True(t, Static("KYC").Available())

	r := NewReader(strings.NewReader("time to market\n"))
	require.True(t, r.Available())
	text, err := r.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, "time to market", text)

	require.False(t, NewReader(nil).Available())
}

func TestClipboard_UsesFirstCommandOnPath(t *testing.T) {
	var ran []string
	c := &Clipboard{
		lookPath: func(name string) (string, error) {
			if name == "xsel" || name == "pbpaste" {
				return "/usr/bin/" + name, nil
			}
			return "", errors.New("not found")
		},
		run: func(_ context.Context, name string, args ...string) ([]byte, error) {
			ran = append([]string{name}, args...)
			return []byte("blue-sky thinking"), nil
		},
	}
	require.True(t, c.Available())
	text, err := c.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, "blue-sky thinking", text)
	require.Equal(t, []string{"xsel", "--primary", "--output"}, ran)

	none := &Clipboard{lookPath: func(string) (string, error) { return "", errors.New("nope") }}
	require.False(t, none.Available())
}

func TestEncodeAndClassify(t *testing.T) {
	ok := Encode([]byte(`{"explanation":"e"}`), nil)
	assert.Equal(t, `{"explanation":"e"}`, ok)
	assert.Equal(t, KindResult, Classify(ok))

	blocked := Encode(nil, fmt.Errorf("wrap: %w", dispatcher.ErrBlocked))
	assert.Equal(t, BlockedMarker, blocked)
	assert.Equal(t, KindBlocked, Classify(blocked))

	status := Encode(nil, &dispatcher.StatusError{StatusCode: 500, Status: "500 Internal Server Error"})
	assert.Equal(t, "ERROR: Request failed with status 500 Internal Server Error", status)
	assert.Equal(t, KindError, Classify(status))
	assert.False(t, IsNetworkError(status))

	network := Encode(nil, errors.New("dial tcp: connection refused"))
	assert.Equal(t, KindError, Classify(network))
	assert.True(t, IsNetworkError(network))
	assert.Equal(t, "NETWORK: dial tcp: connection refused", ErrorText(network))
}

type fakeExplainer struct {
	got  dispatcher.Query
	body []byte
	err  error
}

func (f *fakeExplainer) Explain(_ context.Context, q dispatcher.Query) ([]byte, error) {
	f.got = q
	return f.body, f.err
}

type fakeProfiles struct {
	prof history.Profile
	err  error
}

func (f fakeProfiles) Get(context.Context) (history.Profile, error) { return f.prof, f.err }

func TestWorker_FillsDefaultsFromProfile(t *testing.T) {
	ex := &fakeExplainer{body: []byte(`{"explanation":"fine"}`)}
	w := NewWorker(ex, fakeProfiles{prof: history.Profile{ExplanationLevel: history.LevelDetailed, UserRole: "pm", DefaultContext: "b2b"}})

	resp := w.Handle(context.Background(), Payload{Question: "churn", UserRole: "sales"})
	require.Equal(t, `{"explanation":"fine"}`, resp)
	require.Equal(t, dispatcher.Query{Text: "churn", ExplanationLevel: "detailed", UserRole: "sales", AdditionalContext: "b2b"}, ex.got)
}

func TestWorker_ProfileErrorStillDispatches(t *testing.T) {
	ex := &fakeExplainer{err: &dispatcher.StatusError{StatusCode: 404}}
	w := NewWorker(ex, fakeProfiles{err: errors.New("locked")})

	resp := w.Handle(context.Background(), Payload{Question: "churn"})
	require.Equal(t, "ERROR: Request failed with status 404", resp)
	require.Equal(t, "churn", ex.got.Text)
}

func TestPort_OneMessageOneResponse(t *testing.T) {
	ctx := context.Background()
	calls := 0
	p := Connect(ctx, HandlerFunc(func(_ context.Context, msg Payload) string {
		calls++
		return "echo:" + msg.Question
	}))
	require.True(t, strings.HasPrefix(p.Name, "popup-port-"))

	require.NoError(t, p.Post(Payload{Question: "ARR"}))
	require.ErrorIs(t, p.Post(Payload{Question: "again"}), ErrPortUsed)

	resp, err := p.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, "echo:ARR", resp)
	require.Equal(t, 1, calls)
}

func TestPort_ReceiveHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	p := Connect(ctx, HandlerFunc(func(context.Context, Payload) string { return "never" }))

	_, err := p.Receive(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
