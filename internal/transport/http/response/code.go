package response

import (
	"net/http"

	"online-library/internal/domain"
)

// StatusMsgMap holds the client-facing category for each status we emit.
var StatusMsgMap = map[int]string{
	http.StatusBadRequest:            "Request validation failed",
	http.StatusUnauthorized:          "Failed to authenticate",
	http.StatusForbidden:             "Forbidden",
	http.StatusNotFound:              "Entity not found",
	http.StatusRequestEntityTooLarge: "Request too large",
	http.StatusTooManyRequests:       "Too many requests",
	http.StatusInternalServerError:   "Server error",
	http.StatusServiceUnavailable:    "Server busy",
	http.StatusGatewayTimeout:        "Request timed out",
}

// Status classifies err into an HTTP status.
func Status(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func message(status int) string {
	if m, ok := StatusMsgMap[status]; ok {
		return m
	}
	return http.StatusText(status)
}
