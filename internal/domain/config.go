package domain

// KeyPrefix namespaces every key the service writes to the context index store.
const KeyPrefix = "synthsearch:"

// ModelParams are the language model invocation settings, fixed for the process lifetime.
type ModelParams struct {
	Model       string
	Temperature float64
	KeepAlive   string
}

// DefaultModelParams mirrors the defaults the service ships with.
func DefaultModelParams() ModelParams {
	return ModelParams{
		Model:       "llama3",
		Temperature: 0.1,
		KeepAlive:   "1h",
	}
}
