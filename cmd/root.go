// Package cmd defines the treecat command line interface.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"treecat/pkg/concat"
	"treecat/pkg/ignore"
	"treecat/pkg/logging"
	"treecat/pkg/version"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
	"github.com/pkoukk/tiktoken-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// fallbackEncoding is used when tiktoken does not know the model name.
const fallbackEncoding = "cl100k_base"

var (
	rootLogger *zap.Logger
	cfgFile    string
)

// RootCmd is the base command; treecat has one job, so the root command
// runs the concatenation itself.
var RootCmd = &cobra.Command{
	Use:   "treecat [directory]",
	Short: "Concatenate a directory tree into a single text file",
	Long: `treecat walks a directory tree and concatenates the content of matching
text files into one output file, each file framed by a header carrying
its path relative to the root. The result is a single context blob
suitable for feeding into an LLM or for review.`,
	Args:         cobra.MaximumNArgs(1),
	RunE:         runRoot,
	SilenceUsage: true,
}

// Execute runs the root command with the given logger.
func Execute(logger *zap.Logger) error {
	rootLogger = logger
	return RootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := RootCmd.Flags()
	flags.StringP("output", "o", concat.DefaultOutputName, "path of the combined output file")
	flags.StringSliceP("exclude-ext", "e", nil, "file extensions to skip, without the leading dot")
	flags.StringSliceP("exclude-dir", "E", nil, "directory names to prune from the walk")
	flags.StringSliceP("include-dir", "D", nil, "directory name substrings a directory must match for its files to be processed")
	flags.StringSliceP("include-file", "f", nil, "file name substrings a file must match to be included")
	flags.StringSliceP("exclude-pattern", "x", nil, "file name substrings to skip")
	flags.Bool("use-default-excludes", false, "apply the stock exclusion lists for common development trees")
	flags.String("ignore-file", "", "extra gitignore-style pattern file")
	flags.Bool("no-ignore", false, "do not load "+ignore.FileName+" from the root directory")
	flags.Bool("skip-binary", false, "sniff file content and skip binary files")
	flags.Int("max-size-kb", 0, "skip files larger than this many KB (0 = no limit)")
	flags.String("tree", "", "also write a directory tree listing to this path")
	flags.BoolP("tokens", "t", false, "report a token count for the combined output")
	flags.String("model", "gpt-4o", "tiktoken model used with --tokens")
	flags.BoolP("clipboard", "c", false, "copy the combined output to the system clipboard")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.StringVar(&cfgFile, "config", "", "config file (default .treecat.yaml in the working directory or $HOME)")

	if err := viper.BindPFlags(flags); err != nil {
		panic(fmt.Sprintf("failed to bind flags: %v", err))
	}
}

// initConfig wires viper to the optional config file and TREECAT_*
// environment variables. Flags win over both.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".treecat")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("TREECAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && rootLogger != nil {
		rootLogger.Debug("Loaded config file", zap.String("file", viper.ConfigFileUsed()))
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	logger := rootLogger
	if logger == nil {
		logger = zap.NewNop()
	}
	if viper.GetBool("verbose") {
		if built, err := logging.Setup(true, "treecat", version.Version); err == nil {
			logger = built
		}
	}

	rootDir := "."
	if len(args) == 1 {
		rootDir = args[0]
	}

	cfg := concat.Config{
		RootDir:            rootDir,
		Output:             viper.GetString("output"),
		ExcludedExtensions: viper.GetStringSlice("exclude-ext"),
		ExcludedDirs:       viper.GetStringSlice("exclude-dir"),
		IncludedDirs:       viper.GetStringSlice("include-dir"),
		IncludedFiles:      viper.GetStringSlice("include-file"),
		ExcludedPatterns:   viper.GetStringSlice("exclude-pattern"),
		IgnoreFile:         viper.GetString("ignore-file"),
		NoIgnore:           viper.GetBool("no-ignore"),
		SkipBinary:         viper.GetBool("skip-binary"),
		MaxFileSizeKB:      viper.GetInt("max-size-kb"),
		TreePath:           viper.GetString("tree"),
	}
	if viper.GetBool("use-default-excludes") {
		cfg.ApplyDefaultExcludes()
	}

	out := cmd.OutOrStdout()
	cyan := color.New(color.FgCyan).SprintFunc()
	cfg.Progress = func(relPath string) {
		fmt.Fprintf(out, "Processing: %s\n", cyan(relPath))
	}

	stats, err := concat.Run(cfg, logger)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(out, "\n%s Processed %d files, skipped %d\n", green("Complete!"), stats.FilesProcessed, stats.FilesSkipped)
	fmt.Fprintf(out, "Output saved to: %s\n", cfg.Output)

	if viper.GetBool("tokens") || viper.GetBool("clipboard") {
		reportCombinedOutput(cmd, cfg.Output, logger)
	}
	return nil
}

// reportCombinedOutput reads the finished output back for the optional
// token count and clipboard copy. Both are advisory; failures are logged
// and never fail the run.
func reportCombinedOutput(cmd *cobra.Command, outputPath string, logger *zap.Logger) {
	combined, err := os.ReadFile(outputPath)
	if err != nil {
		logger.Warn("Could not read combined output back", zap.String("file", outputPath), zap.Error(err))
		return
	}
	out := cmd.OutOrStdout()

	if viper.GetBool("tokens") {
		model := viper.GetString("model")
		count, tokErr := countTokens(string(combined), model)
		if tokErr != nil {
			logger.Warn("Token counting failed", zap.String("model", model), zap.Error(tokErr))
		} else {
			fmt.Fprintf(out, "Token count (%s): %d\n", model, count)
		}
	}

	if viper.GetBool("clipboard") {
		if clipErr := clipboard.WriteAll(string(combined)); clipErr != nil {
			logger.Warn("Failed to copy output to clipboard", zap.Error(clipErr))
		} else {
			fmt.Fprintln(out, "Copied combined output to clipboard")
		}
	}
}

// countTokens counts tiktoken tokens, falling back to a generic encoding
// for model names tiktoken does not recognize.
func countTokens(text, model string) (int, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return 0, err
		}
	}
	return len(encoding.EncodeOrdinary(text)), nil
}
