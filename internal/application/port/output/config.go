package output

// ConfigPort reads process-level settings that live outside the profile
// file, such as which profile to load.
type ConfigPort interface {
	Get(key string) string
	GetWithDefault(key string, defaultValue string) string
}
