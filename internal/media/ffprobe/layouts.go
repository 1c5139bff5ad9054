package ffprobe

import (
	"context"
	"fmt"
	"strings"

	"stereomax/internal/procexec"
)

// AudioEntry is one raw line of the audio layout query. Fields are empty when
// ffprobe reported nothing for them.
type AudioEntry struct {
	Layout   string
	Language string
}

// ParseError reports a line of the audio layout query that could not be parsed.
type ParseError struct {
	Line int
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ffprobe output line %d: unexpected field count in %q", e.Line, e.Text)
}

// AudioLayoutArgs returns the arguments that list channel layout and language
// for every audio stream, one CSV line per stream.
func AudioLayoutArgs(path string) []string {
	return []string{
		"-v", "error",
		"-select_streams", "a",
		"-show_entries", "stream=channel_layout:stream_tags=language",
		"-of", "csv=p=0",
		"--", path,
	}
}

// AudioLayouts runs the audio layout query. On a failed invocation the
// procexec result is returned alongside the error so callers can surface stderr.
func (c *Client) AudioLayouts(ctx context.Context, path string) ([]AudioEntry, procexec.Result, error) {
	res, err := c.runner.Run(ctx, procexec.Command{
		Name:    c.binary,
		Args:    AudioLayoutArgs(path),
		Timeout: c.timeout,
	})
	if err != nil {
		return nil, res, err
	}
	entries, err := ParseAudioLayouts(string(res.Stdout))
	return entries, res, err
}

// ParseAudioLayouts parses csv=p=0 output of layout,language pairs. Only the
// ends of the output are trimmed: a blank line between streams is still a
// stream, with both fields missing, so positions follow line order. A line
// with more than two fields is rejected.
func ParseAudioLayouts(output string) ([]AudioEntry, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil, nil
	}
	lines := strings.Split(output, "\n")
	entries := make([]AudioEntry, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			entries = append(entries, AudioEntry{})
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) > 2 {
			return nil, &ParseError{Line: i + 1, Text: line}
		}
		entry := AudioEntry{Layout: strings.TrimSpace(fields[0])}
		if len(fields) == 2 {
			entry.Language = strings.TrimSpace(fields[1])
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
