package abc

// ErrInvalidConfig matches every *ConfigError.
// Use errors.Is(err, ErrInvalidConfig) to detect construction failures.
var ErrInvalidConfig = &ConfigError{}

// ConfigError reports an invalid construction parameter.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "invalid config"
	}
	return "invalid config: " + e.Field + " " + e.Reason
}

func (e *ConfigError) Is(target error) bool {
	_, ok := target.(*ConfigError)
	return ok
}
