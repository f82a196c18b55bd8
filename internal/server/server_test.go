package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/translink/internal/audio"
	"codeberg.org/snonux/translink/internal/catalog"
	"codeberg.org/snonux/translink/internal/connection"
	"codeberg.org/snonux/translink/internal/session"
	"codeberg.org/snonux/translink/internal/testutil"
	"codeberg.org/snonux/translink/internal/translation"
)

type fixture struct {
	server     *httptest.Server
	translator *testutil.MockTranslator
	synth      *testutil.MockSynthesizer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		translator: &testutil.MockTranslator{Translations: map[string]string{"Hello": "Merhaba"}},
		synth:      &testutil.MockSynthesizer{},
	}
	config := Config{
		DefaultFrom: "en",
		DefaultTo:   "tr",
		Languages:   []string{"en", "tr", "de"},
	}
	s := New(config, f.translator, f.synth, zerolog.Nop())
	f.server = httptest.NewServer(s.Handler())
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) wsURL() string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, req session.Request) (int, []byte) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(req))
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	msgType, data, err := conn.ReadMessage()
	require.NoError(t, err)
	return msgType, data
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "mock", body["translator"])
}

func TestLanguages(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.server.URL + "/languages")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got catalog.Catalog
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, catalog.Catalog{
		{Code: "en", Name: "English"},
		{Code: "tr", Name: "Turkish"},
		{Code: "de", Name: "German"},
	}, got)
}

func TestLanguages_FeedsCatalogCache(t *testing.T) {
	f := newFixture(t)

	store, err := catalog.NewSQLiteStore(t.TempDir() + "/cache.db")
	require.NoError(t, err)
	defer store.Close()

	cache := catalog.NewCache(store, catalog.NewHTTPFetcher(f.server.URL+"/languages", nil), zerolog.Nop())
	ctx := testutil.TestContext(t)

	got, source, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.SourceNetwork, source)
	assert.Len(t, got, 3)

	f.server.Close()

	got, source, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.SourceCache, source)
	assert.Len(t, got, 3)
}

func TestLegacyTranslate(t *testing.T) {
	f := newFixture(t)
	client := translation.NewLegacyClient(f.server.URL+"/translate", nil)

	got, err := client.Translate(testutil.TestContext(t), "Hello", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Merhaba", got)
	assert.Equal(t, []string{"Translate: Hello (en->tr)"}, f.translator.Calls)
}

func TestLegacyTranslate_BadRequests(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"missing sentence", "/translate?from=en&to=tr", http.StatusBadRequest},
		{"bad code", "/translate?sentence=Hello&from=not+a+code", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(f.server.URL + tt.path)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	f.translator.Errors = map[string]error{"Boom": errors.New("upstream")}
	resp, err := http.Get(f.server.URL + "/translate?sentence=Boom")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestWebSocket_Text(t *testing.T) {
	f := newFixture(t)
	conn := dial(t, f.wsURL())

	msgType, data := roundTrip(t, conn, session.Request{Sentence: "Hello", FromLanguageCode: "en", ToLanguageCode: "tr", Mode: session.ModeText})
	assert.Equal(t, websocket.TextMessage, msgType)
	assert.Equal(t, "Merhaba", string(data))
}

func TestWebSocket_Speech(t *testing.T) {
	f := newFixture(t)
	conn := dial(t, f.wsURL())

	msgType, data := roundTrip(t, conn, session.Request{Sentence: "Hello", Mode: session.ModeSpeech})
	assert.Equal(t, websocket.BinaryMessage, msgType)
	assert.Equal(t, testutil.SampleMP3(), data)
	assert.Equal(t, []string{"TTS: Merhaba (tr)"}, f.synth.Calls)
}

func TestWebSocket_Errors(t *testing.T) {
	f := newFixture(t)
	conn := dial(t, f.wsURL())

	tests := []struct {
		name string
		req  session.Request
		want string
	}{
		{"blank sentence", session.Request{Sentence: "  ", Mode: session.ModeText}, "Error: " + session.EmptySentenceMessage},
		{"unknown mode", session.Request{Sentence: "Hello", Mode: "video"}, "Error: unknown mode"},
		{"bad code", session.Request{Sentence: "Hello", FromLanguageCode: "not a code", Mode: session.ModeText}, "Error: invalid language code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgType, data := roundTrip(t, conn, tt.req)
			assert.Equal(t, websocket.TextMessage, msgType)
			assert.True(t, strings.HasPrefix(string(data), tt.want), "got %q", data)
		})
	}

	f.synth.Err = errors.New("tts down")
	msgType, data := roundTrip(t, conn, session.Request{Sentence: "Hello", Mode: session.ModeSpeech})
	assert.Equal(t, websocket.TextMessage, msgType)
	assert.Equal(t, "Error: speech synthesis failed", string(data))
}

func TestWebSocket_RejectsNonMP3Speech(t *testing.T) {
	f := newFixture(t)
	f.synth.Audio = []byte("RIFF....WAVEfmt ")
	conn := dial(t, f.wsURL())

	msgType, data := roundTrip(t, conn, session.Request{Sentence: "Hello", Mode: session.ModeSpeech})
	assert.Equal(t, websocket.TextMessage, msgType)
	assert.Equal(t, "Error: speech synthesis failed", string(data))
}

func TestWebSocket_MalformedFrame(t *testing.T) {
	f := newFixture(t)
	conn := dial(t, f.wsURL())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "Error: malformed request", string(data))
}

func TestWebSocket_RepliesInOrder(t *testing.T) {
	f := newFixture(t)
	f.translator.Translations["One"] = "Bir"
	f.translator.Translations["Two"] = "İki"
	conn := dial(t, f.wsURL())

	require.NoError(t, conn.WriteJSON(session.Request{Sentence: "One", Mode: session.ModeText}))
	require.NoError(t, conn.WriteJSON(session.Request{Sentence: "Two", Mode: session.ModeText}))

	for _, want := range []string{"Bir", "İki"} {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}
}

func TestWebSocket_NoSynthesizer(t *testing.T) {
	s := New(Config{DefaultFrom: "en", DefaultTo: "tr"}, &testutil.MockTranslator{}, nil, zerolog.Nop())
	server := httptest.NewServer(s.Handler())
	defer server.Close()

	conn := dial(t, "ws"+strings.TrimPrefix(server.URL, "http")+"/ws")
	_, data := roundTrip(t, conn, session.Request{Sentence: "Hello", Mode: session.ModeSpeech})
	assert.Equal(t, "Error: speech is not available on this server", string(data))
}

// TestSessionEndToEnd drives a real session over a real connection
func TestSessionEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.TestContext(t)

	conn := connection.NewManager(f.wsURL(), zerolog.Nop())
	require.NoError(t, conn.Connect(ctx))

	player := &testutil.FakePlayer{}
	handler := audio.NewHandler(audio.Config{Dir: t.TempDir(), AutoPlay: true}, player, zerolog.Nop())
	s := session.NewManager(conn, handler, zerolog.Nop())

	runDone := make(chan error, 1)
	go func() { runDone <- s.Run(ctx) }()

	require.NoError(t, s.Submit("Hello", "en", "tr", session.ModeText))
	state, err := s.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, session.ResultText, state.Result.Kind)
	assert.Equal(t, "Merhaba", state.Result.Text)

	require.NoError(t, s.Submit("Hello", "en", "tr", session.ModeSpeech))
	state, err = s.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, session.ResultAudio, state.Result.Kind)
	assert.Equal(t, 1, player.Count())
	path := state.Result.Audio.Path
	testutil.AssertFileExists(t, path)

	require.NoError(t, s.Close())
	testutil.AssertFileNotExists(t, path)
	assert.Equal(t, 0, handler.Live())

	select {
	case err := <-runDone:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop after Close")
	}
	assert.Equal(t, connection.StateClosed, s.Snapshot().Connection)
}
