package gateway

import (
	"encoding/json"
	"errors"
	"fmt"

	"overcooked-live/internal/domain"
)

const (
	MessageResponse = "response"
	MessageEvent    = "event"
)

// Request is a command sent by a client.
type Request struct {
	ID           string          `json:"id"`
	Command      string          `json:"command"`
	RestaurantID int             `json:"restaurant_id"`
	Payload      json.RawMessage `json:"payload,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Response struct {
	Type  string     `json:"type"`
	ID    string     `json:"id"`
	OK    bool       `json:"ok"`
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

// Push is an event delivered to every client of a room.
type Push struct {
	Type         string `json:"type"`
	Event        string `json:"event"`
	RestaurantID int    `json:"restaurant_id"`
	Data         any    `json:"data,omitempty"`
}

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrBadRequest       = errors.New("bad request")
	ErrUnknownCommand   = errors.New("unknown command")
)

const (
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION_ERROR"
	CodeOrderRejected    = "ORDER_REJECTED"
	CodeDuplicateRequest = "DUPLICATE_REQUEST"
	CodeAlreadyInactive  = "ALREADY_INACTIVE"
	CodeInvalidStatus    = "INVALID_STATUS"
	CodeInvalidTable     = "INVALID_TABLE"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeBadRequest       = "BAD_REQUEST"
	CodeUnknownCommand   = "UNKNOWN_COMMAND"
	CodeInternal         = "INTERNAL"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{domain.ErrNotFound, CodeNotFound},
	{domain.ErrValidation, CodeValidation},
	{domain.ErrOrderRejected, CodeOrderRejected},
	{domain.ErrDuplicateRequest, CodeDuplicateRequest},
	{domain.ErrAlreadyInactive, CodeAlreadyInactive},
	{domain.ErrInvalidStatus, CodeInvalidStatus},
	{domain.ErrInvalidTable, CodeInvalidTable},
	{ErrPermissionDenied, CodePermissionDenied},
	{ErrBadRequest, CodeBadRequest},
	{ErrUnknownCommand, CodeUnknownCommand},
}

// ErrorCode maps an error onto its wire code. Unknown errors are INTERNAL.
func ErrorCode(err error) string {
	for _, entry := range errorCodes {
		if errors.Is(err, entry.err) {
			return entry.code
		}
	}
	return CodeInternal
}

func okResponse(id string, data any) Response {
	return Response{Type: MessageResponse, ID: id, OK: true, Data: data}
}

func errorResponse(id string, err error) Response {
	code := ErrorCode(err)
	message := err.Error()
	if code == CodeInternal {
		message = "internal error"
	}
	return Response{Type: MessageResponse, ID: id, Error: &ErrorBody{Code: code, Message: message}}
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: payload is required", ErrBadRequest)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}
