package response

import (
	"errors"
	"net/http"
	"testing"

	"backend/internal/apperror"

	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusForError(apperror.Validation("bad")))
	assert.Equal(t, http.StatusConflict, StatusForError(apperror.DuplicateKey("taken")))
	assert.Equal(t, http.StatusConflict, StatusForError(apperror.StaleVersion("moved")))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusForError(apperror.PasswordPolicy("short")))
	assert.Equal(t, http.StatusNotFound, StatusForError(apperror.NotFound("gone")))
	assert.Equal(t, http.StatusInternalServerError, StatusForError(errors.New("boom")))
}

func TestFromError(t *testing.T) {
	status, body := FromError(apperror.NotFound("customer 7 not found"))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, http.StatusNotFound, body.StatusCode)
	assert.Equal(t, "customer 7 not found", body.Error)
}
