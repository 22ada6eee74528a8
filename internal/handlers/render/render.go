package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func init() {
	configureValidator(validate)
}

type Struct any

// MessageResponse is the body of every successful operation that has no data
// to return, e.g. {"message": "Verification email sent"}
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request, e.g.
// {"error": "User not found"}
type ErrorResponse struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, data any) {
	JSONWithStatus(w, data, http.StatusOK)
}

// Render successful operation message with 200 status
func Message(w http.ResponseWriter, message string) {
	JSONWithStatus(w, MessageResponse{Message: message}, http.StatusOK)
}

// Render successful operation message and enforce status code
func MessageWithStatus(w http.ResponseWriter, message string, code int) {
	JSONWithStatus(w, MessageResponse{Message: message}, code)
}

// Render request error
func Error(w http.ResponseWriter, message string, code int) {
	JSONWithStatus(w, ErrorResponse{Error: message}, code)
}

// Render authorization failure. Those use the "msg" key, matching what token
// aware clients of the API expect.
func AuthError(w http.ResponseWriter, message string) {
	type response struct {
		Msg string `json:"msg"`
	}

	JSONWithStatus(w, response{Msg: message}, http.StatusUnauthorized)
}

// Render json DecodeError
func DecodeError(w http.ResponseWriter, err error) {
	var message string

	// Try to provide more specific error message based on error type
	switch err := err.(type) {
	case *json.UnmarshalTypeError:
		message = fmt.Sprintf("Invalid data type for field '%s'", err.Field)
	default:
		message = fmt.Sprintf("Failed to parse JSON: %s", err.Error())
	}

	Error(w, message, http.StatusBadRequest)
}

// Render ValidationErrors
func ValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	type response struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}

	fields := make(map[string]string, len(errs))

	// Create user-friendly error messages based on validation tag
	for _, fieldError := range errs {
		var message string
		switch fieldError.Tag() {
		case "required":
			message = "This field is required"
		case "email":
			message = "Invalid email address"
		case "min":
			message = fmt.Sprintf("Value is too short (minimum %s)", fieldError.Param())
		default:
			message = "Invalid value"
		}

		fields[fieldError.Field()] = message
	}

	JSONWithStatus(w, response{Error: "Request validation failed", Fields: fields}, http.StatusBadRequest)
}

// BindAndValidate decodes JSON request body into type T and validates it using struct tags.
// Returns the decoded value and writes appropriate error responses for decoding or validation failures.
func BindAndValidate[T Struct](w http.ResponseWriter, r *http.Request) (T, error) {
	var value T

	err := json.NewDecoder(r.Body).Decode(&value)
	if err != nil {
		DecodeError(w, err)
		return value, err
	}

	err = validate.Struct(value)
	if err != nil {
		// pretty sure cast will be ok cause expecting T is valid struct
		errs := err.(validator.ValidationErrors)
		ValidationErrors(w, errs)
		return value, err
	}

	return value, nil
}

// JSONWithStatus sends data as json and enforces status code
func JSONWithStatus(w http.ResponseWriter, data any, code int) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
