package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fonegitim-api-io/api/pkg/models"
	"fonegitim-api-io/api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func serviceErrorStatus(t *testing.T, err error) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	HandleServiceError(c, err)
	return recorder.Code
}

func TestHandleServiceErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "forbidden", err: services.ErrForbidden, want: http.StatusForbidden},
		{name: "not found", err: services.ErrNotFound, want: http.StatusNotFound},
		{name: "version conflict", err: services.ErrVersionConflict, want: http.StatusConflict},
		{name: "illegal state", err: services.ErrIllegalState, want: http.StatusConflict},
		{
			name: "wrapped illegal state",
			err:  errors.Wrap(services.ErrIllegalState, "campaign owner has no verification record"),
			want: http.StatusConflict,
		},
		{
			name: "missing documents",
			err:  &services.MissingDocumentsError{Missing: []models.DocumentType{models.DocTranscript}},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "rate limited",
			err:  &services.RateLimitError{ResetAt: time.Now().Add(time.Hour)},
			want: http.StatusTooManyRequests,
		},
		{name: "unclassified", err: errors.New("driver exploded"), want: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, serviceErrorStatus(t, tc.err))
		})
	}
}

func TestParseVersion(t *testing.T) {
	version, err := parseVersion("3")
	assert.NoError(t, err)
	assert.Equal(t, int64(3), version)

	_, err = parseVersion("not-a-number")
	assert.Error(t, err)

	_, err = parseVersion("-1")
	assert.Error(t, err)
}
