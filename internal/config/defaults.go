package config

const (
	defaultManualDir       = "~/manual_downloads"
	defaultOutputDir       = "~/.local/share/trajconv/dataset"
	defaultLogDir          = "~/.local/share/trajconv/logs"
	defaultDatasetName     = "soar_dataset"
	defaultDatasetVersion  = "1.0.0"
	defaultImageWidth      = 256
	defaultImageHeight     = 256
	defaultStateDim        = 7
	defaultActionDim       = 7
	defaultJPEGQuality     = 90
	defaultDepth           = 6
	defaultTrajPrefix      = "traj"
	defaultTrainProportion = 1.0
	defaultWorkers         = 16
	defaultChunkSize       = 1000
	defaultDecodeTimeout   = 300
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ManualDir: defaultManualDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Dataset: Dataset{
			Name:        defaultDatasetName,
			Version:     defaultDatasetVersion,
			ImageWidth:  defaultImageWidth,
			ImageHeight: defaultImageHeight,
			StateDim:    defaultStateDim,
			ActionDim:   defaultActionDim,
			JPEGQuality: defaultJPEGQuality,
		},
		Discovery: Discovery{
			Depth:           defaultDepth,
			TrajPrefix:      defaultTrajPrefix,
			TrainProportion: defaultTrainProportion,
		},
		Builder: Builder{
			Workers:              defaultWorkers,
			ChunkSize:            defaultChunkSize,
			DecodeTimeoutSeconds: defaultDecodeTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
