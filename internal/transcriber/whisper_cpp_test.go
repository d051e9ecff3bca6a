package transcriber

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/wav"
)

func TestWhisperCppEmptyAudio(t *testing.T) {
	w := NewWhisperCpp(Config{ModelPath: "/nonexistent/model.bin"})
	text, err := w.Transcribe(context.Background(), nil)
	if err != nil {
		t.Errorf("expected no error for empty audio, got: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty text for empty audio, got: %q", text)
	}
}

func TestWhisperCppMissingModel(t *testing.T) {
	w := NewWhisperCpp(Config{ModelPath: "/nonexistent/path/model.bin", SampleRate: 16000, Channels: 1})

	_, err := w.Transcribe(context.Background(), make([]byte, 32000))
	if err == nil {
		t.Fatal("expected error for missing model file")
	}
	if !strings.Contains(err.Error(), "model file not found") {
		t.Errorf("expected 'model file not found' error, got: %v", err)
	}
	if !NeedsSetup(err) {
		t.Error("missing model should be a setup error")
	}
}

func TestWhisperCppArgs(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantLang string
		threads  bool
	}{
		{"auto language", Config{ModelPath: "/m.bin"}, "auto", false},
		{"explicit language and threads", Config{ModelPath: "/m.bin", Language: "en", Threads: 8}, "en", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := NewWhisperCpp(tt.config).args("/tmp/a.wav")
			joined := strings.Join(args, " ")
			if !strings.Contains(joined, "-l "+tt.wantLang) {
				t.Errorf("args %q missing language %q", joined, tt.wantLang)
			}
			if strings.Contains(joined, "-t 8") != tt.threads {
				t.Errorf("args %q thread flag mismatch", joined)
			}
			if !strings.HasSuffix(joined, "-f /tmp/a.wav") && !strings.Contains(joined, "-f /tmp/a.wav") {
				t.Errorf("args %q missing input file", joined)
			}
		})
	}
}

func TestWhisperCppWithModel(t *testing.T) {
	modelPath := os.Getenv("WHISPER_TEST_MODEL")
	if modelPath == "" {
		t.Skip("WHISPER_TEST_MODEL not set, skipping whisper-cli test")
	}

	w := NewWhisperCpp(Config{ModelPath: modelPath, Language: "en", Threads: 4, SampleRate: 16000, Channels: 1})
	if _, err := w.Transcribe(context.Background(), make([]byte, 32000)); err != nil {
		t.Errorf("Transcribe() error = %v", err)
	}
}

func TestWriteWAV(t *testing.T) {
	pcm := make([]byte, 320)
	neg := int16(-1200)
	binary.LittleEndian.PutUint16(pcm[0:], uint16(neg))
	binary.LittleEndian.PutUint16(pcm[2:], 700)
	path := filepath.Join(t.TempDir(), "a.wav")

	if err := writeWAV(path, pcm, 16000, 1); err != nil {
		t.Fatalf("writeWAV() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dec.SampleRate != 16000 || dec.NumChans != 1 || dec.BitDepth != 16 {
		t.Errorf("format = %d Hz, %d ch, %d bit", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	if len(buf.Data) != 160 {
		t.Fatalf("samples = %d, want 160", len(buf.Data))
	}
	if buf.Data[0] != -1200 || buf.Data[1] != 700 {
		t.Errorf("first samples = %v", buf.Data[:2])
	}
}

func TestTempWAVIsRemovable(t *testing.T) {
	path, err := tempWAV(make([]byte, 64), 0, 0)
	if err != nil {
		t.Fatalf("tempWAV() error = %v", err)
	}
	if !strings.HasSuffix(path, ".wav") {
		t.Errorf("path = %q", path)
	}
	if err := os.Remove(path); err != nil {
		t.Errorf("remove: %v", err)
	}
}
