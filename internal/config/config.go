// Package config handles pipeline configuration loading.
package config

// Config holds all pipeline settings. Grounded on
// avatar29A-midgard-ro/internal/config's struct-of-structs shape with
// yaml tags, retargeted from game settings to pipeline stages.
type Config struct {
	Volume   VolumeConfig   `yaml:"volume"`
	Extract  ExtractConfig  `yaml:"extract"`
	Simplify SimplifyConfig `yaml:"simplify"`
	Cache    CacheConfig    `yaml:"cache"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// VolumeConfig selects and preprocesses the input voxel field.
type VolumeConfig struct {
	SliceDir    string  `yaml:"slice_dir"`
	Smooth      bool    `yaml:"smooth"`
	SmoothSize  int     `yaml:"smooth_size"`
	SmoothSigma float64 `yaml:"smooth_sigma"`
	BrickSize   int     `yaml:"brick_size"`
	UseBricking bool    `yaml:"use_bricking"`
}

// ExtractConfig configures Marching Cubes extraction.
type ExtractConfig struct {
	Isovalue float64 `yaml:"isovalue"`
	Parallel bool    `yaml:"parallel"`
}

// SimplifyConfig configures QEM simplification.
type SimplifyConfig struct {
	Enabled bool    `yaml:"enabled"`
	Ratio   float64 `yaml:"ratio"`
}

// CacheConfig configures the compressed mesh cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// OutputConfig configures mesh export.
type OutputConfig struct {
	OBJPath string `yaml:"obj_path"`
	GLBPath string `yaml:"glb_path"`
}

// LoggingConfig configures internal/logger.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Volume: VolumeConfig{
			Smooth:      false,
			SmoothSize:  5,
			SmoothSigma: 0.8,
			BrickSize:   16,
			UseBricking: true,
		},
		Extract: ExtractConfig{
			Isovalue: 0.5,
			Parallel: true,
		},
		Simplify: SimplifyConfig{
			Enabled: true,
			Ratio:   0.5,
		},
		Cache: CacheConfig{
			Enabled: false,
			Dir:     ".isomesh-cache",
		},
		Output: OutputConfig{
			OBJPath: "out.obj",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
