package assert

import (
	"encoding/json"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/larder/internal/config"
	"github.com/kode4food/larder/pkg/api"
)

// Wrapper wraps testify assertions with Larder-specific helpers
type Wrapper struct {
	*testing.T
	*assert.Assertions
	Require *assert.Assertions
}

// New creates a new test assertion wrapper with both assert and require from
// testify plus Larder-specific helpers
func New(t *testing.T) *Wrapper {
	return &Wrapper{
		T:          t,
		Assertions: assert.New(t),
		Require:    assert.New(t),
	}
}

// ConfigValid asserts that a configuration is valid
func (w *Wrapper) ConfigValid(cfg *config.Config) {
	w.Helper()
	w.NoError(cfg.Validate())
	w.True(cfg.APIPort > 0 && cfg.APIPort <= 65535)
}

// ConfigInvalid asserts that a configuration is invalid
func (w *Wrapper) ConfigInvalid(cfg *config.Config, contains string) {
	w.Helper()
	err := cfg.Validate()
	w.Error(err)
	if err != nil && contains != "" {
		w.Contains(err.Error(), contains)
	}
}

// Dense asserts that positions are exactly 1..len(positions) in some order
func (w *Wrapper) Dense(positions []int) {
	w.Helper()
	sorted := slices.Sorted(slices.Values(positions))
	for i, pos := range sorted {
		if !w.Equal(i+1, pos, "positions %v are not dense", positions) {
			return
		}
	}
}

// StepsDense asserts that a recipe's steps occupy positions 1..n
func (w *Wrapper) StepsDense(steps []*api.Step) {
	w.Helper()
	positions := make([]int, len(steps))
	for i, st := range steps {
		positions[i] = st.Order
	}
	w.Dense(positions)
}

// Status asserts the response status code
func (w *Wrapper) Status(rec *httptest.ResponseRecorder, code int) {
	w.Helper()
	w.Equal(code, rec.Code, "body: %s", rec.Body.String())
}

// ErrorResponse asserts an error status and that the error message
// contains the given text
func (w *Wrapper) ErrorResponse(
	rec *httptest.ResponseRecorder, code int, contains string,
) {
	w.Helper()
	w.Status(rec, code)
	var res api.ErrorResponse
	if !w.NoError(json.Unmarshal(rec.Body.Bytes(), &res)) {
		return
	}
	w.Equal(code, res.Status)
	if contains != "" {
		w.Contains(res.Error, contains)
	}
}

// JSON asserts the response status and decodes its body into out
func (w *Wrapper) JSON(rec *httptest.ResponseRecorder, code int, out any) {
	w.Helper()
	w.Status(rec, code)
	w.NoError(json.Unmarshal(rec.Body.Bytes(), out),
		"body: %s", rec.Body.String())
}
