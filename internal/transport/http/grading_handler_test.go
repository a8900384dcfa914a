package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classpulse/internal/grading"
	"classpulse/pkg/contracts/domain"
)

func TestGradingHandler_Scale(t *testing.T) {
	h := NewGradingHandler(grading.KJSEA())

	req := httptest.NewRequest(http.MethodGet, "/scale", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var key domain.GradingKey
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &key))
	assert.Equal(t, 41.0, key.PassMark)
	require.Len(t, key.Bands, 8)
	assert.Equal(t, "EE1", key.Bands[0].Label)
	assert.Equal(t, 90.0, key.Bands[0].Threshold)
	assert.Equal(t, 8, key.Bands[0].Points)
	assert.Equal(t, "BE2", key.Bands[7].Label)
	assert.Equal(t, 1, key.Bands[7].Points)
}
