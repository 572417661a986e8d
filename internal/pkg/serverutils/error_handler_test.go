package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docmind-be/internal/apperror"
)

type testLogger struct {
	errors int
}

func (l *testLogger) Debug(module, message string, details map[string]interface{}) {}
func (l *testLogger) Info(module, message string, details map[string]interface{})  {}
func (l *testLogger) Warn(module, message string, details map[string]interface{})  {}
func (l *testLogger) Error(module, message string, details map[string]interface{}) { l.errors++ }
func (l *testLogger) Sync() error                                                  { return nil }

func runWithError(t *testing.T, log *testLogger, handlerErr error) (int, map[string]interface{}) {
	t.Helper()
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(log))
	app.Get("/boom", func(ctx *fiber.Ctx) error {
		return handlerErr
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestErrorHandlerClientInput(t *testing.T) {
	log := &testLogger{}
	status, body := runWithError(t, log, apperror.NewClientInput("Unsupported file type %q", ".exe"))

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], ".exe")
	assert.Zero(t, log.errors, "client mistakes are not server errors")
}

func TestErrorHandlerNoActiveSession(t *testing.T) {
	log := &testLogger{}
	status, body := runWithError(t, log, apperror.ErrNoActiveSession)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["message"], "upload a document")
	assert.Zero(t, log.errors)
}

func TestErrorHandlerProcessingError(t *testing.T) {
	log := &testLogger{}
	status, body := runWithError(t, log, apperror.NewProcessing("extraction", errors.New("corrupt pdf trailer")))

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Error processing document", body["message"])
	// The cause stays in the log, never in the response.
	assert.NotContains(t, body["message"], "corrupt pdf trailer")
	assert.Equal(t, 1, log.errors)
}

func TestErrorHandlerModelError(t *testing.T) {
	log := &testLogger{}
	status, body := runWithError(t, log, apperror.NewModelInvocation(errors.New("gateway timeout")))

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Error generating a response", body["message"])
	assert.Equal(t, 1, log.errors)
}

func TestErrorHandlerUnknownError(t *testing.T) {
	log := &testLogger{}
	status, body := runWithError(t, log, errors.New("something unexpected"))

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "An internal error occurred", body["message"])
	assert.Equal(t, 1, log.errors)
}

func TestErrorHandlerFiberError(t *testing.T) {
	log := &testLogger{}
	status, _ := runWithError(t, log, fiber.NewError(fiber.StatusNotFound, "not here"))

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Zero(t, log.errors)
}

func TestValidateRequest(t *testing.T) {
	type payload struct {
		Query string `validate:"required"`
	}

	assert.NoError(t, ValidateRequest(&payload{Query: "hello"}))

	err := ValidateRequest(&payload{})
	var cerr *apperror.ClientInputError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Message, "Query")
}
