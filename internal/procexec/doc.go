// Package procexec runs external tools as child processes with captured output.
//
// Runner is the seam every tool wrapper (ffprobe, ffmpeg, mkvmerge) executes
// through, so tests can substitute scripted fakes. ExecRunner is the
// production implementation built on os/exec; non-zero exits and expired
// timeouts surface as *ExitError carrying the tool's stderr.
package procexec
