package relay

import (
	"fmt"
	"net/http"
)

// TransportError 取り込みAPIへの転送失敗。Statusが0ならネットワーク障害
type TransportError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("ingress unreachable: %v", e.Err)
	}
	if e.Code != "" {
		return fmt.Sprintf("ingress returned %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("ingress returned %d %s", e.Status, http.StatusText(e.Status))
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
