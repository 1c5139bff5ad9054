package config

const (
	defaultConfigPath    = "~/.config/stereomax/config.toml"
	defaultLogDir        = "~/.local/share/stereomax/logs"
	defaultHistoryDB     = "~/.local/share/stereomax/history.db"
	defaultFFprobe       = "ffprobe"
	defaultFFmpeg        = "ffmpeg"
	defaultMkvmerge      = "mkvmerge"
	defaultProfile       = "stereo-max/v1"
	defaultMaxWorkers    = 4
	defaultMergeStrategy = "auto"
	defaultSettleSeconds = 10
	defaultLogFormat     = "auto"
	defaultLogLevel      = "info"
	defaultLogMaxSizeMB  = 20
	defaultLogMaxBackups = 5
	defaultLogMaxAgeDays = 30
)

// Merge strategy names accepted by merge.strategy.
const (
	MergeAuto     = "auto"
	MergeMkvmerge = "mkvmerge"
	MergeFFmpeg   = "ffmpeg"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Tools: Tools{
			FFprobe:  defaultFFprobe,
			FFmpeg:   defaultFFmpeg,
			Mkvmerge: defaultMkvmerge,
		},
		Normalize: Normalize{
			Profile:      defaultProfile,
			VerifyOutput: true,
		},
		Merge: Merge{
			Strategy: defaultMergeStrategy,
		},
		History: History{
			Enabled: true,
		},
		Watch: Watch{
			Extensions:    []string{".mkv", ".mp4", ".m4v", ".mov"},
			SettleSeconds: defaultSettleSeconds,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}
