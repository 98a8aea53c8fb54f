package imaging

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// ConvertHEIC converts a HEIC/HEIF payload to JPEG using ffmpeg, which
// handles the format cross-platform. Returns the JPEG bytes and MIME type.
func ConvertHEIC(data []byte) ([]byte, string, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, "", fmt.Errorf("ffmpeg not found: HEIC uploads require ffmpeg")
	}

	in, err := os.CreateTemp("", "upload-*.heic")
	if err != nil {
		return nil, "", fmt.Errorf("failed to create temp file: %w", err)
	}
	inPath := in.Name()
	defer os.Remove(inPath)
	if _, err := in.Write(data); err != nil {
		in.Close()
		return nil, "", fmt.Errorf("failed to write temp file: %w", err)
	}
	in.Close()

	out, err := os.CreateTemp("", "upload-*.jpg")
	if err != nil {
		return nil, "", fmt.Errorf("failed to create temp file: %w", err)
	}
	outPath := out.Name()
	out.Close()
	defer os.Remove(outPath)

	// -frames:v 1: HEIC is a single image
	// -q:v 2: high-quality JPEG output
	cmd := exec.Command(ffmpegPath,
		"-i", inPath,
		"-frames:v", "1",
		"-q:v", "2",
		"-y", outPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Warn().
			Err(err).
			Str("output", truncate(string(output), 300)).
			Msg("ffmpeg HEIC conversion failed")
		return nil, "", fmt.Errorf("HEIC conversion failed: %w", err)
	}

	converted, err := os.ReadFile(outPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read converted file: %w", err)
	}

	log.Debug().
		Int("input_bytes", len(data)).
		Int("output_bytes", len(converted)).
		Msg("HEIC upload converted to JPEG")

	return converted, "image/jpeg", nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
