package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"ulabuild/internal/artifact"
	"ulabuild/internal/build"
	"ulabuild/internal/compile"
	"ulabuild/internal/config"
)

type buildFlags struct {
	in         string
	out        string
	threads    int
	configFile string
	sourceExt  string
	targetExt  string
	compiler   string
	dedupe     bool
	verbose    bool
}

func newBuildCmd() *cobra.Command {
	f := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "build --in <file|dir> --out <file|dir>",
		Short: "Compile a file or a directory tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, f)
		},
	}
	cmd.Flags().StringVarP(&f.in, "in", "i", "", "input file or directory")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output file (single-file mode) or existing directory")
	cmd.Flags().IntVarP(&f.threads, "threads", "t", 0, "number of compile workers (default: one per CPU)")
	cmd.Flags().StringVar(&f.configFile, "config", "", "settings file (default: "+config.DefaultFile+" if present)")
	cmd.Flags().StringVar(&f.sourceExt, "source-ext", "", "source file suffix (default "+config.DefaultSourceExt+")")
	cmd.Flags().StringVar(&f.targetExt, "target-ext", "", "output file suffix (default "+config.DefaultTargetExt+")")
	cmd.Flags().StringVar(&f.compiler, "compiler", "", "compiler command; reads source on stdin, writes output on stdout")
	cmd.Flags().BoolVar(&f.dedupe, "dedupe", false, "compile identical sources once per run")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log per-file progress")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runBuild(cmd *cobra.Command, f *buildFlags) error {
	cfg, err := config.Load(f.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlags(cmd, f, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Compiler == "" {
		return errors.New("compiler command is required: use --compiler, the compiler setting or ULABUILD_COMPILER")
	}
	compiler, err := compile.NewExecCompiler(cfg.Compiler)
	if err != nil {
		return err
	}

	opts := build.Options{
		Workers:    cfg.Workers,
		SourceExt:  cfg.SourceExt,
		TargetExt:  cfg.TargetExt,
		IgnoreDirs: cfg.IgnoreDirs,
		Verbose:    cfg.Verbose,
	}
	if cfg.Dedupe {
		opts.DedupeSize = cfg.CacheSize
	}
	if cfg.Artifact.Enabled {
		mirror, err := artifact.NewS3Store(artifact.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			Prefix:    cfg.Artifact.Prefix,
			UseSSL:    cfg.Artifact.UseSSL,
		})
		if err != nil {
			return fmt.Errorf("artifact mirror: %w", err)
		}
		opts.Mirror = mirror
		if cfg.Verbose {
			log.Printf("build: mirroring artifacts to %s/%s", cfg.Artifact.Endpoint, cfg.Artifact.Bucket)
		}
	}

	report, err := build.New(compiler, opts).Run(cmd.Context(), f.in, f.out)
	if err != nil {
		// A write error still carries the diagnostics gathered before it.
		for _, line := range report.Lines() {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return err
	}
	if err := report.WriteSummary(cmd.OutOrStdout()); err != nil {
		return err
	}
	if !report.OK() {
		return errBuildFailed
	}
	return nil
}

// applyFlags lets explicitly set flags win over file and environment.
func applyFlags(cmd *cobra.Command, f *buildFlags, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("threads") {
		cfg.Workers = f.threads
	}
	if flags.Changed("source-ext") {
		cfg.SourceExt = f.sourceExt
	}
	if flags.Changed("target-ext") {
		cfg.TargetExt = f.targetExt
	}
	if flags.Changed("compiler") {
		cfg.Compiler = f.compiler
	}
	if flags.Changed("dedupe") {
		cfg.Dedupe = f.dedupe
	}
	if flags.Changed("verbose") {
		cfg.Verbose = f.verbose
	}
}
