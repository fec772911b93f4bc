package relay

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIngressClient_Forward(t *testing.T) {
	image := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}

	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantStatus int
		wantCode   string
	}{
		{
			name:   "正常系: 200",
			status: http.StatusOK,
			body:   `{"success":true,"rows":2}`,
		},
		{
			name:       "異常系: 解析エラー",
			status:     http.StatusUnprocessableEntity,
			body:       `{"success":false,"code":"EXTRACTION_PARSE_ERROR","error":"no menu rows"}`,
			wantErr:    true,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "EXTRACTION_PARSE_ERROR",
		},
		{
			name:       "異常系: DB障害",
			status:     http.StatusServiceUnavailable,
			body:       `{"success":false,"code":"PERSISTENCE_ERROR","error":"failed to update catalog"}`,
			wantErr:    true,
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "PERSISTENCE_ERROR",
		},
		{
			name:       "異常系: JSONでないボディ",
			status:     http.StatusBadGateway,
			body:       "<html>bad gateway</html>",
			wantErr:    true,
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("method = %s, want POST", r.Method)
				}
				file, header, err := r.FormFile("file")
				if err != nil {
					t.Errorf("FormFile() error = %v", err)
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				defer func() { _ = file.Close() }()

				if header.Filename != ForwardFilename {
					t.Errorf("filename = %s, want %s", header.Filename, ForwardFilename)
				}
				if ct := header.Header.Get("Content-Type"); ct != ForwardContentType {
					t.Errorf("part Content-Type = %s, want %s", ct, ForwardContentType)
				}
				got, _ := io.ReadAll(file)
				if string(got) != string(image) {
					t.Errorf("image bytes differ")
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewIngressClient(server.URL+"/upload", 5*time.Second)
			err := client.Forward(context.Background(), image)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Forward() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("error type = %T, want *TransportError", err)
			}
			if te.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", te.Status, tt.wantStatus)
			}
			if te.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", te.Code, tt.wantCode)
			}
		})
	}
}

func TestIngressClient_Forward_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	err := NewIngressClient(endpoint, time.Second).Forward(context.Background(), []byte{0xFF})

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	if te.Status != 0 || te.Err == nil {
		t.Errorf("TransportError = %+v, want network failure", te)
	}
}

func TestIngressClient_Forward_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewIngressClient(server.URL, time.Second).Forward(ctx, []byte{0xFF})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestTransportError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *TransportError
		want string
	}{
		{name: "ネットワーク障害", err: &TransportError{Err: errors.New("refused")}, want: "ingress unreachable: refused"},
		{name: "コードあり", err: &TransportError{Status: 422, Code: "EXTRACTION_PARSE_ERROR", Message: "bad csv"}, want: "ingress returned 422 EXTRACTION_PARSE_ERROR: bad csv"},
		{name: "コードなし", err: &TransportError{Status: 502}, want: "ingress returned 502 Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
