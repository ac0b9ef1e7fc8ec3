package relay

import (
	"errors"
	"strconv"
	"strings"

	"github.com/comigor/jargone-go/internal/dispatcher"
)

// Response strings carried back over a port are one of: the raw JSON body,
// BlockedMarker, or an ErrorPrefix message.
const (
	BlockedMarker = "CLOUDFLARE"
	ErrorPrefix   = "ERROR: "

	networkPrefix = "NETWORK: "
)

// Kind classifies a response string.
type Kind int

const (
	KindResult Kind = iota
	KindBlocked
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindResult:
		return "result"
	case KindBlocked:
		return "blocked"
	case KindError:
		return "error"
	}
	return "unknown"
}

// Payload is the outbound message of a port.
type Payload struct {
	Question          string `json:"question"`
	ExplanationLevel  string `json:"explanationLevel,omitempty"`
	Department        string `json:"department,omitempty"`
	UserRole          string `json:"userRole,omitempty"`
	AdditionalContext string `json:"additionalContext,omitempty"`
}

// Encode turns a dispatcher outcome into a response string. A non-2xx status
// always becomes the generic failure; any other error becomes the network
// failure.
func Encode(body []byte, err error) string {
	if err == nil {
		return string(body)
	}
	if errors.Is(err, dispatcher.ErrBlocked) {
		return BlockedMarker
	}
	var se *dispatcher.StatusError
	if errors.As(err, &se) {
		status := se.Status
		if status == "" {
			status = strconv.Itoa(se.StatusCode)
		}
		return ErrorPrefix + "Request failed with status " + status
	}
	return ErrorPrefix + networkPrefix + err.Error()
}

// Classify reports which of the three outcomes resp carries.
func Classify(resp string) Kind {
	switch {
	case resp == BlockedMarker:
		return KindBlocked
	case strings.HasPrefix(resp, "ERROR"):
		return KindError
	}
	return KindResult
}

// ErrorText strips the error prefix from resp.
func ErrorText(resp string) string {
	if strings.HasPrefix(resp, ErrorPrefix) {
		return resp[len(ErrorPrefix):]
	}
	return strings.TrimPrefix(resp, "ERROR")
}

// IsNetworkError reports whether resp is the network failure marker.
func IsNetworkError(resp string) bool {
	return strings.HasPrefix(resp, ErrorPrefix+networkPrefix)
}
