package transcriber

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"
)

const bitDepth = 16

// writeWAV stores 16-bit little-endian PCM as a WAV file.
func writeWAV(path string, pcm []byte, sampleRate, channels int) error {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	if channels <= 0 {
		channels = 1
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[2*i:])))
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, 1)
	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finish wav: %w", err)
	}
	return f.Close()
}

// tempWAV writes pcm to a new file in the temp directory. The caller removes
// it.
func tempWAV(pcm []byte, sampleRate, channels int) (string, error) {
	path := filepath.Join(os.TempDir(), "codespeak-"+uuid.NewString()+".wav")
	if err := writeWAV(path, pcm, sampleRate, channels); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write temp audio: %w", err)
	}
	return path, nil
}
