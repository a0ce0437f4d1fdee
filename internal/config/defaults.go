package config

const (
	defaultOutputDir          = "./output"
	defaultLogDir             = "~/.local/share/altnames/logs"
	defaultLogRetentionDays   = 30
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultSourceURL          = "https://download.geonames.org/export/dump/alternateNamesV2.zip"
	defaultArchiveName        = "alternateNamesV2.zip"
	defaultMemberName         = "alternateNamesV2.txt"
	defaultOutputName         = "alternateNamesV2.parquet"
	defaultTokenName          = "alternateNamesV2-ETag.txt"
	defaultHeadTimeoutSeconds = 10
	defaultConnections        = 4
	defaultAria2Binary        = "aria2c"
	defaultUnzipBinary        = "unzip"
	defaultSevenZipBinary     = "7z"
	defaultConversion         = "t2s"
	defaultCompression        = "snappy"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Source: Source{
			URL:                defaultSourceURL,
			ArchiveName:        defaultArchiveName,
			MemberName:         defaultMemberName,
			OutputName:         defaultOutputName,
			TokenName:          defaultTokenName,
			HeadTimeoutSeconds: defaultHeadTimeoutSeconds,
		},
		Download: Download{
			Connections: defaultConnections,
			Aria2Binary: defaultAria2Binary,
		},
		Extract: Extract{
			UnzipBinary:    defaultUnzipBinary,
			SevenZipBinary: defaultSevenZipBinary,
		},
		Transform: Transform{
			Conversion:  defaultConversion,
			Compression: defaultCompression,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
