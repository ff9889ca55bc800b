package main

import (
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-xmag/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
)

// Config holds file-based defaults for layout and build behavior.
// Explicitly set flags always win over config values.
type Config struct {
	Layout LayoutConfigFile `yaml:"layout"`
	Build  BuildConfigFile  `yaml:"build"`
}

// LayoutConfigFile mirrors the layout flags.
type LayoutConfigFile struct {
	Paper          *string  `yaml:"paper"`
	Columns        *int     `yaml:"columns"`
	OuterMarginMM  *float64 `yaml:"outerMarginMM"`
	InnerMarginMM  *float64 `yaml:"innerMarginMM"`
	TopMarginMM    *float64 `yaml:"topMarginMM"`
	BottomMarginMM *float64 `yaml:"bottomMarginMM"`
	ColumnGapMM    *float64 `yaml:"columnGapMM"`
	Pagination     *string  `yaml:"pagination"`
	ImageLayout    *string  `yaml:"imageLayout"`
	BlankFirstPage *bool    `yaml:"blankFirstPage"`
	IndexPage      *bool    `yaml:"indexPage"`
}

// BuildConfigFile mirrors the build flags.
type BuildConfigFile struct {
	Headless        *bool   `yaml:"headless"`
	StorageState    *string `yaml:"storageState"`
	TimeoutSeconds  *int    `yaml:"timeoutSeconds"`
	ContinueOnError *bool   `yaml:"continueOnError"`
	KeepTex         *bool   `yaml:"keepTex"`
	DateFormat      *string `yaml:"dateFormat"`
}

// loadConfig reads and strictly parses a YAML config file.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.DecodeStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	return &cfg, nil
}

// applyConfig copies config values into flags that the user did not set
// explicitly on the command line.
func applyConfig(flags *buildFlags, cfg *Config, fs *flag.FlagSet) {
	setString := func(name string, dst *string, src *string) {
		if src != nil && !fs.Changed(name) {
			*dst = *src
		}
	}
	setInt := func(name string, dst *int, src *int) {
		if src != nil && !fs.Changed(name) {
			*dst = *src
		}
	}
	setFloat := func(name string, dst *float64, src *float64) {
		if src != nil && !fs.Changed(name) {
			*dst = *src
		}
	}
	setBool := func(name string, dst *bool, src *bool) {
		if src != nil && !fs.Changed(name) {
			*dst = *src
		}
	}

	setString("paper", &flags.paper, cfg.Layout.Paper)
	setInt("columns", &flags.columns, cfg.Layout.Columns)
	setFloat("outer-margin-mm", &flags.outerMarginMM, cfg.Layout.OuterMarginMM)
	setFloat("inner-margin-mm", &flags.innerMarginMM, cfg.Layout.InnerMarginMM)
	setFloat("top-margin-mm", &flags.topMarginMM, cfg.Layout.TopMarginMM)
	setFloat("bottom-margin-mm", &flags.bottomMarginMM, cfg.Layout.BottomMarginMM)
	setFloat("column-gap-mm", &flags.columnGapMM, cfg.Layout.ColumnGapMM)
	setString("pagination", &flags.pagination, cfg.Layout.Pagination)
	setString("image-layout", &flags.imageLayout, cfg.Layout.ImageLayout)
	setBool("blank-first-page", &flags.blankFirstPage, cfg.Layout.BlankFirstPage)
	setBool("index-page", &flags.indexPage, cfg.Layout.IndexPage)

	setBool("headless", &flags.headless, cfg.Build.Headless)
	setString("storage-state", &flags.storageState, cfg.Build.StorageState)
	setInt("timeout-seconds", &flags.timeoutSeconds, cfg.Build.TimeoutSeconds)
	setBool("continue-on-error", &flags.continueOnError, cfg.Build.ContinueOnError)
	setBool("keep-tex", &flags.keepTex, cfg.Build.KeepTex)
	setString("date-format", &flags.dateFormat, cfg.Build.DateFormat)
}
