package model

type VoiceRequest struct {
	MinIndex        *int `json:"min_index,omitempty"`
	MaxIndex        *int `json:"max_index,omitempty"`
	PitchesPerChord *int `json:"pitches_per_chord,omitempty"`
}

// GenerateRequest fields left out fall back to the generate command's
// defaults.
type GenerateRequest struct {
	Title           string       `json:"title"`
	Key             string       `json:"key"`
	Meter           string       `json:"meter"`
	NoteLength      int          `json:"note_length"`
	Duration        int          `json:"duration"`
	Lines           int          `json:"lines"`
	MeasuresPerLine *int         `json:"measures_per_line,omitempty"`
	Treble          VoiceRequest `json:"treble"`
	Bass            VoiceRequest `json:"bass"`
	Seed            int64        `json:"seed"`
}

type GenerateResponse struct {
	Id   string `json:"id"`
	Tune string `json:"tune"`
}

type KeysResponse struct {
	Keys []string `json:"keys"`
}

type TokenResponse struct {
	Token string `json:"token"`
	Midi  int    `json:"midi"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
