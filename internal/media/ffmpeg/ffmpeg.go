package ffmpeg

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"stereomax/internal/filtergraph"
)

// DefaultBinary is used when no binary is configured.
const DefaultBinary = "ffmpeg"

var quietFlags = []string{"-hide_banner", "-nostats", "-loglevel", "error"}

// ExtractRequest describes a single-stream normalization job.
type ExtractRequest struct {
	Input    string
	Position int
	Filter   string
	Encode   filtergraph.EncodeParams
	Output   string
}

// ExtractArgs returns arguments that map audio stream Position of Input through
// Filter and encode it into a matroska audio file at Output.
func ExtractArgs(req ExtractRequest) ([]string, error) {
	if strings.TrimSpace(req.Input) == "" || strings.TrimSpace(req.Output) == "" {
		return nil, errors.New("ffmpeg extract: input and output paths are required")
	}
	if req.Position < 0 {
		return nil, fmt.Errorf("ffmpeg extract: invalid stream position %d", req.Position)
	}
	if strings.TrimSpace(req.Filter) == "" {
		return nil, errors.New("ffmpeg extract: filter chain is required")
	}
	args := []string{"-y"}
	args = append(args, quietFlags...)
	args = append(args,
		"-i", req.Input,
		"-map", fmt.Sprintf("0:a:%d", req.Position),
		"-af", req.Filter,
		"-c:a", req.Encode.Codec,
		"-b:a", req.Encode.Bitrate,
		"-vbr", req.Encode.VBRFlag(),
		"-ac", strconv.Itoa(req.Encode.Channels),
		"-f", "matroska",
		req.Output,
	)
	return args, nil
}

// Track is an additional audio input appended by a remux.
type Track struct {
	Path     string
	Language string
	Title    string
}

// RemuxRequest describes a remux that keeps every stream of Input and appends
// Tracks as non-default audio streams.
type RemuxRequest struct {
	Input  string
	Tracks []Track
	Encode filtergraph.EncodeParams
	Output string
}

// RemuxArgs returns the fallback merge arguments. Original streams are copied;
// appended tracks are re-encoded with the profile codec and tagged with title
// and language, and their default disposition is cleared.
func RemuxArgs(req RemuxRequest) ([]string, error) {
	if strings.TrimSpace(req.Input) == "" || strings.TrimSpace(req.Output) == "" {
		return nil, errors.New("ffmpeg remux: input and output paths are required")
	}
	if len(req.Tracks) == 0 {
		return nil, errors.New("ffmpeg remux: at least one track is required")
	}

	args := []string{"-y"}
	args = append(args, quietFlags...)
	args = append(args, "-i", req.Input)
	for _, track := range req.Tracks {
		args = append(args, "-i", track.Path)
	}
	args = append(args, "-map", "0:v?", "-map", "0:s?", "-map", "0:t?", "-map", "0:a")
	for i := range req.Tracks {
		args = append(args, "-map", fmt.Sprintf("%d:a", i+1))
	}
	args = append(args, "-c:v", "copy", "-c:s", "copy", "-c:t", "copy", "-c:a", "copy")

	// Output audio index of an appended track. The offset assumes the input
	// carries one original audio stream per appended track.
	offset := len(req.Tracks)
	for i, track := range req.Tracks {
		n := strconv.Itoa(i + offset)
		args = append(args,
			"-c:a:"+n, req.Encode.Codec,
			"-b:a:"+n, req.Encode.Bitrate,
			"-metadata:s:a:"+n, "title="+track.Title,
			"-metadata:s:a:"+n, "language="+track.Language,
			"-disposition:a:"+n, "0",
		)
	}
	args = append(args, "-vbr", req.Encode.VBRFlag())
	if format := OutputFormatForPath(req.Output); format != "" {
		args = append(args, "-f", format)
	}
	args = append(args, req.Output)
	return args, nil
}

// OutputFormatForPath maps an output extension to an ffmpeg muxer name. The
// staged output carries a temporary suffix, so the muxer cannot be inferred.
func OutputFormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mkv", ".mk3d", ".mka":
		return "matroska"
	case ".mp4", ".m4v":
		return "mp4"
	case ".mov":
		return "mov"
	case ".ts", ".m2ts":
		return "mpegts"
	case ".webm":
		return "webm"
	default:
		return ""
	}
}
