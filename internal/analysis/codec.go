package analysis

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/theirongolddev/cashraaga/internal/model"
)

var (
	// ErrMalformed means the payload is not a structurally valid analysis.
	ErrMalformed = errors.New("analysis: malformed payload")
	// ErrUnserializable means the value cannot be encoded as JSON (NaN, Inf).
	ErrUnserializable = errors.New("analysis: value cannot be serialized")
)

var validate = validator.New()

// Decode parses and validates an analysis payload from the backend or the
// durable cache. This is the only ingestion path into the store.
func Decode(data []byte) (*model.AnalysisResult, error) {
	var a *model.AnalysisResult
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if a == nil {
		return nil, fmt.Errorf("%w: null document", ErrMalformed)
	}
	if err := validate.Struct(a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return a, nil
}

// Encode serializes an analysis for the durable cache.
func Encode(a *model.AnalysisResult) ([]byte, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnserializable, err)
	}
	return data, nil
}
