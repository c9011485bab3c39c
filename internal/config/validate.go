package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for values the converter cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.ManualDir) == "" {
		problems = append(problems, "paths.manual_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		problems = append(problems, "paths.output_dir must be set")
	}
	if c.Paths.ManualDir != "" && c.Paths.ManualDir == c.Paths.OutputDir {
		problems = append(problems, "paths.output_dir must differ from paths.manual_dir")
	}
	if c.Discovery.TrainProportion < 0 || c.Discovery.TrainProportion > 1 {
		problems = append(problems, fmt.Sprintf("discovery.train_proportion must be within [0, 1], got %v", c.Discovery.TrainProportion))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be console or json, got %q", c.Logging.Format))
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(problems, "; "))
}
