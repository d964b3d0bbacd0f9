package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-shiori/cssembed"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	err := newCommand().Execute()
	if err != nil {
		logrus.Fatalln(err)
	}
}

func newCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cssembed [file1] [file2] ... [fileN]",
		Short: "CLI tool for embedding stylesheet URLs as base64 data URIs",
		RunE:  cmdHandler,
	}

	cmd.Flags().StringP("output", "o", "", "path to save result, a directory when there are several files, - for stdout")
	cmd.Flags().StringP("config", "c", "", "path to YAML file which contains files and options")
	cmd.Flags().StringP("base-dir", "b", "", "directory to resolve local URLs against (default: directory of each file)")

	cmd.Flags().Bool("fail-on-missing", true, "abort when an asset can't be found or downloaded")
	cmd.Flags().StringP("skip-larger-than", "s", "", "skip assets larger than this size (e.g. 500KB)")
	cmd.Flags().Bool("inclusive", false, "only embed URLs marked with /* embed */")
	cmd.Flags().Bool("no-sniffing", false, "use file extension instead of content to detect MIME type")

	cmd.Flags().BoolP("quiet", "q", false, "disable logging")
	cmd.Flags().Bool("verbose", false, "more verbose logging")

	cmd.Flags().StringP("user-agent", "u", "", "set custom user agent")
	cmd.Flags().IntP("timeout", "t", 60, "maximum time (in second) before request timeout")
	cmd.Flags().Int("max-retries", 0, "how many times a failed download is retried")
	cmd.Flags().Bool("insecure", false, "skip X.509 (TLS) certificate verification")
	cmd.Flags().Int("max-concurrent", 4, "max files processed at a time")

	return cmd
}

func cmdHandler(cmd *cobra.Command, args []string) error {
	// Parse flags
	outputPath, _ := cmd.Flags().GetString("output")
	configPath, _ := cmd.Flags().GetString("config")

	disableLog, _ := cmd.Flags().GetBool("quiet")
	useVerboseLog, _ := cmd.Flags().GetBool("verbose")

	userAgent, _ := cmd.Flags().GetString("user-agent")
	timeout, _ := cmd.Flags().GetInt("timeout")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	skipTLSVerification, _ := cmd.Flags().GetBool("insecure")
	maxConcurrent, _ := cmd.Flags().GetInt("max-concurrent")

	// Load config file, flags that are explicitly set win over it
	fileCfg := &configFile{}
	if configPath != "" {
		var err error
		fileCfg, err = parseConfigFile(configPath)
		if err != nil {
			return err
		}
	}

	opts := fileCfg.Options
	applyFlags(cmd, &opts)

	// Create embedder config
	cfg := cssembed.DefaultConfig
	opts.apply(&cfg)

	cfg.UserAgent = userAgent
	cfg.EnableLog = !disableLog
	cfg.EnableVerboseLog = !disableLog && useVerboseLog
	cfg.RequestTimeout = time.Duration(timeout) * time.Second
	cfg.MaxRetries = maxRetries
	cfg.SkipTLSVerification = skipTLSVerification
	cfg.MaxConcurrentFiles = maxConcurrent

	// Keep the order of files when they all go to stdout
	if outputPath == "-" {
		cfg.MaxConcurrentFiles = 1
	}

	// Logs go to stderr so stdout can carry the result
	logrus.SetOutput(os.Stderr)

	embedder, err := cssembed.New(cfg)
	if err != nil {
		return err
	}

	// Create list of jobs
	jobs, err := createJobs(args, fileCfg.Files, outputPath)
	if err != nil {
		return err
	}

	var sink cssembed.Sink = cssembed.FileSink{}
	if outputPath == "-" {
		sink = stdoutSink{}
	}

	result, err := embedder.Run(context.Background(), jobs, sink)
	if err != nil {
		return err
	}

	if len(result.Files) == 0 {
		return fmt.Errorf("no file to process")
	}

	return nil
}

// stdoutSink prints results instead of saving them.
type stdoutSink struct{}

func (stdoutSink) WriteFile(_ string, content []byte) error {
	_, err := os.Stdout.Write(content)
	return err
}
