package config

// RuntimeOverrides holds configuration values that can be overridden at
// runtime via CLI flags
type RuntimeOverrides struct {
	LogLevel *string
	LogFile  *string
	UserID   *string
	Role     *string
}

func applyOverrides(cfg *ConfigSchema, overrides *RuntimeOverrides) {
	if overrides == nil {
		return
	}
	if overrides.LogLevel != nil {
		cfg.Log.LogLevel = *overrides.LogLevel
	}
	if overrides.LogFile != nil {
		cfg.Log.LogFile = *overrides.LogFile
	}
	if overrides.UserID != nil {
		cfg.UserID = *overrides.UserID
	}
	if overrides.Role != nil {
		cfg.Role = *overrides.Role
	}
}
