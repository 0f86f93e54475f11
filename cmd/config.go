package cmd

import (
	"cmp"
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"climb.dev/pkg/climb/internal/domain"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "climb"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	outputFlagName            = "output"
	verboseFlagName           = "verbose"
	runParallelFlagName       = "parallel"
	runSeedFlagName           = "seed"
	selectiveFlagName         = "selective"
	metricsFileFlagName       = "metrics-file"
	budgetTypeFlagName        = "budget-type"
	budgetLimitFlagName       = "budget-limit"
	dseProbabilityFlagName    = "dse-probability"
	stringStrategyFlagName    = "string-strategy"
	referenceStrategyFlagName = "reference-strategy"

	runParallelConfigKey = "parallel"
	runSeedConfigKey     = "seed"
	metricsFileKey       = "metrics.file"
	budgetTypeKey        = "budget.type"
	budgetLimitKey       = "budget.limit"

	searchProbesKey             = "search.probes"
	searchDSEProbabilityKey     = "search.dse_probability"
	searchNullProbabilityKey    = "search.null_probability"
	searchStringLengthKey       = "search.string_length"
	searchMaxArrayLengthKey     = "search.max_array_length"
	searchPrimitivesKey         = "search.primitives"
	searchStringsKey            = "search.strings"
	searchArraysKey             = "search.arrays"
	searchReferencesKey         = "search.references"
	searchStringStrategyKey     = "search.string_strategy"
	searchReferenceStrategyKey  = "search.reference_strategy"
	searchSkipCoveredTwoWaysKey = "search.skip_covered_two_ways"
	searchSelectiveKey          = "search.selective"

	defaultReportsDir  = ".climb-reports"
	defaultRunParallel = 1
	defaultBudgetType  = string(domain.BudgetTime)
	defaultBudgetLimit = 60

	envPrefix = "CLIMB"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".climb.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(outputFlagName, defaultReportsDir)
	viper.SetDefault(runParallelConfigKey, defaultRunParallel)
	viper.SetDefault(runSeedConfigKey, 0)
	viper.SetDefault(metricsFileKey, "")
	viper.SetDefault(budgetTypeKey, defaultBudgetType)
	viper.SetDefault(budgetLimitKey, defaultBudgetLimit)

	search := domain.DefaultConfig()
	viper.SetDefault(searchProbesKey, search.Probes)
	viper.SetDefault(searchDSEProbabilityKey, search.DSEProbability)
	viper.SetDefault(searchNullProbabilityKey, search.NullProbability)
	viper.SetDefault(searchStringLengthKey, search.StringLength)
	viper.SetDefault(searchMaxArrayLengthKey, search.MaxArrayLength)
	viper.SetDefault(searchPrimitivesKey, search.Primitives)
	viper.SetDefault(searchStringsKey, search.Strings)
	viper.SetDefault(searchArraysKey, search.Arrays)
	viper.SetDefault(searchReferencesKey, search.References)
	viper.SetDefault(searchStringStrategyKey, string(search.StringStrategy))
	viper.SetDefault(searchReferenceStrategyKey, string(search.ReferenceStrategy))
	viper.SetDefault(searchSkipCoveredTwoWaysKey, search.SkipCoveredTwoWays)
	viper.SetDefault(searchSelectiveKey, search.Selective)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Debug("Ignoring unreadable config file", "file", configFileName, "error", err)
		}
	}
}

// searchConfig assembles the local search settings from config, env and flags.
func searchConfig() domain.Config {
	return domain.Config{
		Probes:             viper.GetInt(searchProbesKey),
		DSEProbability:     viper.GetFloat64(searchDSEProbabilityKey),
		NullProbability:    viper.GetFloat64(searchNullProbabilityKey),
		StringLength:       viper.GetInt(searchStringLengthKey),
		MaxArrayLength:     viper.GetInt(searchMaxArrayLengthKey),
		Primitives:         viper.GetBool(searchPrimitivesKey),
		Strings:            viper.GetBool(searchStringsKey),
		Arrays:             viper.GetBool(searchArraysKey),
		References:         viper.GetBool(searchReferencesKey),
		StringStrategy:     domain.StringStrategy(viper.GetString(searchStringStrategyKey)),
		ReferenceStrategy:  domain.ReferenceStrategy(viper.GetString(searchReferenceStrategyKey)),
		SkipCoveredTwoWays: viper.GetBool(searchSkipCoveredTwoWaysKey),
		Selective:          viper.GetBool(searchSelectiveKey),
	}
}

var slogLevelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// parseSlogLevel accepts level names and numeric slog levels (-4 is debug).
func parseSlogLevel(value string, fallback slog.Level) slog.Level {
	name := strings.ToLower(strings.TrimSpace(value))

	if level, ok := slogLevelNames[name]; ok {
		return level
	}

	if n, err := strconv.Atoi(name); err == nil {
		return slog.Level(n)
	}

	return fallback
}

// configureLogger installs the rotating file logger as the slog default.
// Verbose runs log at Debug regardless of log.level.
func configureLogger(logPath string, verbose bool) {
	logPath = cmp.Or(strings.TrimSpace(logPath), strings.TrimSpace(viper.GetString(logFilenameKey)), defaultLogFilename)

	level := slog.LevelDebug
	if !verbose {
		level = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	rotation := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	globalLogger = slog.New(slog.NewTextHandler(rotation, &slog.HandlerOptions{AddSource: true, Level: level}))
	slog.SetDefault(globalLogger)
}
