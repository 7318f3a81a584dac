package cmd

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/sightread/constants"
	"github.com/jsphweid/sightread/generator"
	"github.com/jsphweid/sightread/keysig"
	"github.com/jsphweid/sightread/logger"
	"github.com/jsphweid/sightread/model"
	"github.com/jsphweid/sightread/notation"
	"github.com/jsphweid/sightread/pitch"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

// shared by every request that does not bring its own seed
var serveRand = generator.NewLockedRand(0)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serves",
	Long:  `Serves generation and conversion over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("could not write response", logger.Fields{"status": status, "error": err.Error()})
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, pitch.ErrInvariantViolation) {
		status = http.StatusInternalServerError
		logger.Error("generation failed", err, logger.Fields{"path": r.URL.Path})
	}
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func HandleKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.KeysResponse{Keys: keysig.Default().Names()})
}

func applyVoice(v *voiceSettings, req model.VoiceRequest) {
	if req.MinIndex != nil {
		v.MinIndex = *req.MinIndex
	}
	if req.MaxIndex != nil {
		v.MaxIndex = *req.MaxIndex
	}
	if req.PitchesPerChord != nil {
		v.PitchesPerChord = *req.PitchesPerChord
	}
}

func settingsFromRequest(req model.GenerateRequest) tuneSettings {
	s := defaultSettings()
	if req.Title != "" {
		s.Title = req.Title
	}
	if req.Key != "" {
		s.Key = req.Key
	}
	if req.Meter != "" {
		s.Meter = req.Meter
	}
	if req.NoteLength != 0 {
		s.NoteLength = req.NoteLength
	}
	if req.Duration != 0 {
		s.Duration = req.Duration
	}
	if req.Lines != 0 {
		s.Lines = req.Lines
	}
	if req.MeasuresPerLine != nil {
		s.MeasuresPerLine = *req.MeasuresPerLine
	}
	applyVoice(&s.Treble, req.Treble)
	applyVoice(&s.Bass, req.Bass)
	return s
}

func HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var input model.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, errors.Wrap(err, "could not decode request body"))
		return
	}

	rnd := serveRand
	if input.Seed != 0 {
		rnd = generator.NewLockedRand(input.Seed)
	}

	tune, err := buildTune(settingsFromRequest(input), rnd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	abc, err := notation.SerializeTune(tune)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.GenerateResponse{Id: uuid.New().String(), Tune: abc})
}

func HandleTokenToMidi(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	m, err := notation.TokenToMidi(token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.TokenResponse{Token: token, Midi: m})
}

func HandleMidiToToken(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	m, err := strconv.Atoi(q.Get("midi"))
	if err != nil {
		writeError(w, r, errors.Wrap(err, "midi must be an integer"))
		return
	}
	var flats bool
	if raw := q.Get("flats"); raw != "" {
		if flats, err = strconv.ParseBool(raw); err != nil {
			writeError(w, r, errors.Wrap(err, "flats must be a boolean"))
			return
		}
	}
	token, err := notation.MidiToToken(m, flats)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.TokenResponse{Token: token, Midi: m})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("request", logger.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})
}

// NewRouter wires the HTTP API. Browsers on other origins may call it so a
// page can render the returned tune.
func NewRouter() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.Use(logRequests)
	router.HandleFunc("/health", HandleHealth).Methods("GET")
	router.HandleFunc("/keys", HandleKeys).Methods("GET")
	router.HandleFunc("/generate", HandleGenerate).Methods("POST")
	router.HandleFunc("/token-to-midi", HandleTokenToMidi).Methods("GET")
	router.HandleFunc("/midi-to-token", HandleMidiToToken).Methods("GET")
	return cors.Default().Handler(router)
}

func initSentry() {
	dsn := constants.GetSentryDSN()
	if dsn == "" {
		logger.Info("sentry not configured", nil)
		return
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: constants.GetEnvironment(),
		Release:     "sightread@dev",
	})
	if err != nil {
		logger.Warn("could not initialize sentry", logger.Fields{"error": err.Error()})
	}
}

func serve() {
	initSentry()
	defer sentry.Flush(2 * time.Second)

	port := constants.GetPort()
	logger.Info("starting server", logger.Fields{"port": port})
	if err := http.ListenAndServe(":"+port, NewRouter()); err != nil {
		logger.Error("server stopped", err, nil)
	}
}
