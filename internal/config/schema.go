package config

// API holds the settings for the gatherly REST backend.
type API struct {
	// BaseURL is the root of the backend API, without a trailing slash.
	BaseURL string `mapstructure:"baseUrl" json:"baseUrl" jsonschema:"required" validate:"required,url"`
	// Token is the bearer token for the current session. An empty token
	// means the session is unauthenticated and the inbox serves the local
	// fallback path only.
	Token string `mapstructure:"token" json:"token,omitempty"`
	// TimeoutSeconds bounds every individual request, including each
	// authorization probe. A probe that exceeds it counts as a denial.
	TimeoutSeconds int `mapstructure:"timeoutSeconds" json:"timeoutSeconds" validate:"gte=1"`
}

// Log holds logging settings.
type Log struct {
	LogLevel string `mapstructure:"logLevel" json:"logLevel,omitempty" validate:"omitempty,oneof=DEBUG INFO WARN ERROR"`
	LogFile  string `mapstructure:"logFile" json:"logFile,omitempty"`
}

type ConfigSchema struct {
	API    API    `mapstructure:"api" json:"api" jsonschema:"required"`
	Log    Log    `mapstructure:"log" json:"log"`
	DBPath string `mapstructure:"dbPath" json:"dbPath" jsonschema:"required" validate:"required"`
	// UserID identifies the signed-in user; set at login, empty when
	// signed out.
	UserID string `mapstructure:"userId" json:"userId,omitempty"`
	// Role selects which inbox screen the CLI renders; checked against
	// the known roles in New.
	Role string `mapstructure:"role" json:"role" jsonschema:"enum=attendee,enum=organizer,enum=performer"`
}
