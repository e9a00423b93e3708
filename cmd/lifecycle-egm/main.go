package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/iwvelando/lifecycle-egm/internal/config"
	"github.com/iwvelando/lifecycle-egm/internal/lifecycle"
	"github.com/iwvelando/lifecycle-egm/pkg/constants"
	"github.com/iwvelando/lifecycle-egm/pkg/output"
	"github.com/iwvelando/lifecycle-egm/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info" // Default to info level
	}

	// Parse log level
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	// Determine output format
	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	// Configure encoder
	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		// Ensure the directory exists
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		config.OutputPaths = []string{loggingConfig.OutputFile}
		config.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return config.Build()
}

// parsePeriods parses the -periods flag, a comma-separated list of period
// indices; empty means the first period only.
func parsePeriods(value string, horizon int) ([]int, error) {
	if value == "" {
		return []int{0}, nil
	}
	if value == "all" {
		periods := make([]int, horizon)
		for i := range periods {
			periods[i] = i
		}
		return periods, nil
	}
	var periods []int
	for _, field := range strings.Split(value, ",") {
		t, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("invalid period index %q: %v", field, err)
		}
		periods = append(periods, t)
	}
	return periods, nil
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	periodsFlag := flag.String("periods", "", "comma-separated period indices to print, or 'all' (default: first period)")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty // Default to pretty format
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}
	conf.ApplyDefaults()

	opts, err := conf.SolverOptions()
	if err != nil {
		logger.Fatal("failed to assemble solver options",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Run the backward induction over the whole horizon.
	var solution *lifecycle.LifeCycleSolution
	if conf.Portfolio != nil {
		engine, err := conf.BuildPortfolioEngine()
		if err != nil {
			logger.Fatal("failed to build portfolio engine",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		solution, err = lifecycle.SolvePortfolio(logger, engine, opts)
		if err != nil {
			logger.Fatal("failed to solve portfolio life cycle",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	} else {
		engine, err := conf.BuildEngine()
		if err != nil {
			logger.Fatal("failed to build engine",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		solution, err = lifecycle.Solve(logger, engine, opts)
		if err != nil {
			logger.Fatal("failed to solve life cycle",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}

	periods, err := parsePeriods(*periodsFlag, solution.Horizon())
	if err != nil {
		logger.Fatal("failed to parse periods flag",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		err = output.PrettyFormat(solution, periods)
	case constants.OutputFormatCSV:
		err = output.CsvFormat(solution, periods)
	}
	if err != nil {
		logger.Fatal("failed to render output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
