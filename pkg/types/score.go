package types

// ProviderKind identifies which scoring backend produced a result.
type ProviderKind string

const (
	// ProviderCloud is the hosted API backend
	ProviderCloud ProviderKind = "cloud"

	// ProviderLocal is the self-hosted backend
	ProviderLocal ProviderKind = "local"
)

// ScoreResult is the outcome of scoring one feed item.
//
// When Valid is false the score could not be obtained from any configured
// provider; Err carries the last failure and Value must be ignored.
type ScoreResult struct {
	// Value is the educational/productivity score in 1..10
	Value int

	// Valid reports whether Value was successfully obtained
	Valid bool

	// Provider is the backend that produced Value
	Provider ProviderKind

	// Err is the terminal failure when Valid is false
	Err error
}
