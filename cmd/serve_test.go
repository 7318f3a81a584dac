package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/jsphweid/sightread/model"
	"github.com/stretchr/testify/assert"
)

func do(t *testing.T, method, target string, body io.Reader) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	w := httptest.NewRecorder()
	NewRouter().ServeHTTP(w, req)
	return w.Result()
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
}

func TestKeysEndpoint(t *testing.T) {
	resp := do(t, http.MethodGet, "/keys", nil)

	var keys model.KeysResponse
	decode(t, resp, &keys)

	assert := assert.New(t)
	assert.Equal(http.StatusOK, resp.StatusCode)
	assert.Len(keys.Keys, 30)
	assert.Equal("C", keys.Keys[0])
}

func TestGenerateEndpointDefaults(t *testing.T) {
	resp := do(t, http.MethodPost, "/generate", nil)

	var gen model.GenerateResponse
	decode(t, resp, &gen)

	assert := assert.New(t)
	assert.Equal(http.StatusOK, resp.StatusCode)
	assert.NotEmpty(gen.Id)
	assert.True(strings.HasPrefix(gen.Tune, "T:Sight Reading\nM:C\nL:1/48\nK:C\n%%staves {1,2}\nV:1\n[K:C clef=treble]\n"))
	assert.True(strings.HasSuffix(gen.Tune, "|]\n"))
}

func TestGenerateEndpointIsSeeded(t *testing.T) {
	body := `{"key": "F#m", "seed": 12, "lines": 1, "treble": {"pitches_per_chord": 3}}`

	var a, b model.GenerateResponse
	decode(t, do(t, http.MethodPost, "/generate", strings.NewReader(body)), &a)
	decode(t, do(t, http.MethodPost, "/generate", strings.NewReader(body)), &b)

	assert := assert.New(t)
	assert.Equal(a.Tune, b.Tune)
	assert.NotEqual(a.Id, b.Id)
	assert.Contains(a.Tune, "[K:F#m clef=bass]")
	assert.Contains(a.Tune, "]12")
}

func TestGenerateEndpointUnknownKey(t *testing.T) {
	resp := do(t, http.MethodPost, "/generate", bytes.NewReader([]byte(`{"key": "H"}`)))

	var e model.ErrorResponse
	decode(t, resp, &e)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, e.Error, "unknown key signature")
}

func TestGenerateEndpointBadBody(t *testing.T) {
	resp := do(t, http.MethodPost, "/generate", strings.NewReader("{"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTokenToMidiEndpoint(t *testing.T) {
	resp := do(t, http.MethodGet, "/token-to-midi?token=%5EC%27", nil)

	var tok model.TokenResponse
	decode(t, resp, &tok)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.TokenResponse{Token: "^C'", Midi: 73}, tok)
}

func TestMidiToTokenEndpoint(t *testing.T) {
	resp := do(t, http.MethodGet, "/midi-to-token?midi=58&flats=true", nil)

	var tok model.TokenResponse
	decode(t, resp, &tok)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.TokenResponse{Token: "_B,", Midi: 58}, tok)

	resp = do(t, http.MethodGet, "/midi-to-token?midi=200", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodGet, "/midi-to-token?midi=abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	resp := do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGenerateEndpointRejectsUnplayableRequests(t *testing.T) {
	cases := map[string]string{
		"treble above the piano": `{"treble": {"max_index": 150}}`,
		"bass below the piano":   `{"bass": {"min_index": -100}}`,
		"too many lines":         `{"lines": 1000000000000}`,
		"negative lines":         `{"lines": -3}`,
		"huge note length":       `{"note_length": 1000000000}`,
		"huge duration":          `{"duration": 1000000000}`,
		"huge meter":             `{"meter": "1000000000/1"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp := do(t, http.MethodPost, "/generate", strings.NewReader(body))

			var e model.ErrorResponse
			decode(t, resp, &e)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, e.Error)
		})
	}
}

func TestMidiToTokenEndpointBadFlats(t *testing.T) {
	resp := do(t, http.MethodGet, "/midi-to-token?midi=61&flats=yes", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var tok model.TokenResponse
	decode(t, do(t, http.MethodGet, "/midi-to-token?midi=61&flats=1", nil), &tok)
	assert.Equal(t, "_D", tok.Token)
}

type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestWriteJSONLogsEncodeFailure(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	writeJSON(brokenWriter{httptest.NewRecorder()}, http.StatusOK, model.KeysResponse{Keys: []string{"C"}})
	assert.Contains(t, buf.String(), "[WARN] could not write response")
	assert.Contains(t, buf.String(), "connection reset")
}
