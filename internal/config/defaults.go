package config

const (
	defaultOutputDir             = "~/Documents/docforge/output"
	defaultBackupDir             = "~/Documents/docforge/backups"
	defaultLogDir                = "~/.local/share/docforge/logs"
	defaultConvertBinary         = "soffice"
	defaultConvertTimeoutSeconds = 300
	defaultConvertLockFile       = "~/.local/share/docforge/convert.lock"
	defaultHistoryPath           = "~/.local/share/docforge/history.db"
	defaultNotifyRequestTimeout  = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			BackupDir: defaultBackupDir,
			LogDir:    defaultLogDir,
		},
		Engine: Engine{
			Workers:      0,
			Overwrite:    false,
			SkipUnlocked: true,
		},
		Convert: Convert{
			Binary:         defaultConvertBinary,
			TimeoutSeconds: defaultConvertTimeoutSeconds,
			LockFile:       defaultConvertLockFile,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Batches:        true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
