package transcriber

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *whisperAPI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cc := openai.DefaultConfig("test-key")
	cc.BaseURL = srv.URL + "/v1"
	return newWhisperAPI(ProviderGroq, cc, Config{Model: "whisper-large-v3-turbo", Language: "de", SampleRate: 16000, Channels: 1})
}

func TestWhisperAPITranscribe(t *testing.T) {
	a := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.FormValue("model"); got != "whisper-large-v3-turbo" {
			t.Errorf("model = %q", got)
		}
		if got := r.FormValue("language"); got != "de" {
			t.Errorf("language = %q", got)
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing audio file: %v", err)
		} else {
			head := make([]byte, 12)
			io.ReadFull(f, head)
			if string(head[0:4]) != "RIFF" || string(head[8:12]) != "WAVE" {
				t.Errorf("upload is not a WAV file: %q", head)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"text":"  hallo welt  "}`)
	})

	got, err := a.Transcribe(context.Background(), make([]byte, 3200))
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if got != "hallo welt" {
		t.Errorf("Transcribe() = %q, want %q", got, "hallo welt")
	}
}

func TestWhisperAPIUnauthorizedNeedsSetup(t *testing.T) {
	a := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"invalid api key","type":"invalid_request_error"}}`)
	})

	_, err := a.Transcribe(context.Background(), make([]byte, 3200))
	if !NeedsSetup(err) {
		t.Errorf("Transcribe() error = %v, want a setup error", err)
	}
}

func TestWhisperAPIEmptyAudio(t *testing.T) {
	a := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty audio")
	})
	if got, err := a.Transcribe(context.Background(), nil); got != "" || err != nil {
		t.Errorf("Transcribe(nil) = %q, %v", got, err)
	}
}
