package main

import (
	"fmt"
	"os"
	fp "path/filepath"
	"strings"

	"github.com/go-shiori/cssembed"
	"github.com/kennygrant/sanitize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configFile is the YAML file given with --config.
type configFile struct {
	Options options    `yaml:"options"`
	Files   []fileSpec `yaml:"files"`
}

// options are pointers so unset values keep the defaults.
type options struct {
	BaseDir             *string `yaml:"baseDir"`
	FailOnMissingURL    *bool   `yaml:"failOnMissingUrl"`
	SkipURLsLargerThan  *string `yaml:"skipUrlsLargerThan"`
	Inclusive           *bool   `yaml:"inclusive"`
	UseMimeTypeSniffing *bool   `yaml:"useMimeTypeSniffing"`
}

type fileSpec struct {
	Src     string `yaml:"src"`
	Dest    string `yaml:"dest"`
	BaseDir string `yaml:"baseDir"`
}

func parseConfigFile(path string) (*configFile, error) {
	// Open file
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := &configFile{}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for i, file := range cfg.Files {
		if strings.TrimSpace(file.Src) == "" {
			return nil, fmt.Errorf("file #%d in %s has no src", i+1, path)
		}
	}

	return cfg, nil
}

// applyFlags overrides opts with the flags set in command line.
func applyFlags(cmd *cobra.Command, opts *options) {
	flags := cmd.Flags()

	if flags.Changed("base-dir") {
		baseDir, _ := flags.GetString("base-dir")
		opts.BaseDir = &baseDir
	}

	if flags.Changed("fail-on-missing") {
		failOnMissing, _ := flags.GetBool("fail-on-missing")
		opts.FailOnMissingURL = &failOnMissing
	}

	if flags.Changed("skip-larger-than") {
		limit, _ := flags.GetString("skip-larger-than")
		opts.SkipURLsLargerThan = &limit
	}

	if flags.Changed("inclusive") {
		inclusive, _ := flags.GetBool("inclusive")
		opts.Inclusive = &inclusive
	}

	if flags.Changed("no-sniffing") {
		noSniffing, _ := flags.GetBool("no-sniffing")
		useSniffing := !noSniffing
		opts.UseMimeTypeSniffing = &useSniffing
	}
}

func (o options) apply(cfg *cssembed.Config) {
	if o.BaseDir != nil {
		cfg.BaseDir = *o.BaseDir
	}
	if o.FailOnMissingURL != nil {
		cfg.FailOnMissingURL = *o.FailOnMissingURL
	}
	if o.SkipURLsLargerThan != nil {
		cfg.SkipURLsLargerThan = *o.SkipURLsLargerThan
	}
	if o.Inclusive != nil {
		cfg.Inclusive = *o.Inclusive
	}
	if o.UseMimeTypeSniffing != nil {
		cfg.UseMimeTypeSniffing = *o.UseMimeTypeSniffing
	}
}

// createJobs pairs every source with its destination. Files from the
// config file keep their own dest, files from args follow outputPath.
// Without either, the result is written next to its source. Two sources
// sharing a destination is an error.
func createJobs(args []string, files []fileSpec, outputPath string) ([]cssembed.Job, error) {
	var jobs []cssembed.Job
	for _, file := range files {
		dest := file.Dest
		if dest == "" {
			dest = fp.Join(fp.Dir(file.Src), createFileName(file.Src))
		}

		jobs = append(jobs, cssembed.Job{Src: file.Src, Dest: dest, BaseDir: file.BaseDir})
	}

	// Prepare output target
	outputDir := ""
	outputFile := ""
	switch {
	case outputPath == "" || outputPath == "-":
	case isDirectory(outputPath), len(args) > 1, strings.HasSuffix(outputPath, string(os.PathSeparator)):
		outputDir = outputPath
	default:
		outputFile = outputPath
	}

	for _, arg := range args {
		var dest string
		switch {
		case outputPath == "-":
			dest = outputPath
		case outputFile != "":
			dest = outputFile
		case outputDir != "":
			dest = fp.Join(outputDir, sanitize.Name(fp.Base(arg)))
		default:
			dest = fp.Join(fp.Dir(arg), createFileName(arg))
		}

		jobs = append(jobs, cssembed.Job{Src: arg, Dest: dest})
	}

	if len(jobs) == 0 {
		return nil, fmt.Errorf("no file to process")
	}

	sources := make(map[string]string)
	for _, job := range jobs {
		if job.Dest == "-" {
			continue
		}

		dest := fp.Clean(job.Dest)
		if src, exist := sources[dest]; exist {
			return nil, fmt.Errorf("%s and %s are both written to %s", src, job.Src, dest)
		}
		sources[dest] = job.Src
	}

	return jobs, nil
}

// createFileName returns the name of the result of src when no output
// is specified, e.g. `style.css` becomes `style.embed.css`.
func createFileName(src string) string {
	baseName := fp.Base(src)
	extension := fp.Ext(baseName)
	name := strings.TrimSuffix(baseName, extension)
	if extension == "" {
		extension = ".css"
	}

	return sanitize.Name(name + ".embed" + extension)
}

func isDirectory(path string) bool {
	f, err := os.Stat(path)
	if err != nil {
		return false
	}

	return f.IsDir()
}
