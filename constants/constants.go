package constants

import "os"

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func GetPort() string {
	return getEnv("PORT", "8080")
}

func GetEnvironment() string {
	return getEnv("ENVIRONMENT", "development")
}

// GetSentryDSN is empty when error reporting is off.
func GetSentryDSN() string {
	return os.Getenv("SENTRY_DSN")
}

// GetOutputDir is where exported midi files go when no path is given.
func GetOutputDir() string {
	return getEnv("OUTPUT_PATH", "./out")
}

const (
	DefaultTitle = "Sight Reading"
	DefaultKey   = "C"
	DefaultMeter = "C"

	// With L:1/48 a quarter note is 12 units, which leaves room for
	// triplets and sixteenths.
	DefaultNoteLength = 48
	QuarterDuration   = 12

	DefaultLines           = 5
	DefaultMeasuresPerLine = 4
	DefaultPitchesPerChord = 1
	DefaultTempo           = 100.0

	MaxLines      = 100
	MaxNoteLength = 192

	// Staff index 0 is middle C.
	TrebleMin = 0
	TrebleMax = 15
	BassMin   = -12
	BassMax   = 0
)
