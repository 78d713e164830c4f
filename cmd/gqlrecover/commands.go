package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/gqlrecover/internal/chunk"
	"github.com/ogulcanaydogan/gqlrecover/internal/config"
	"github.com/ogulcanaydogan/gqlrecover/internal/hash"
	"github.com/ogulcanaydogan/gqlrecover/internal/pipeline"
	"github.com/ogulcanaydogan/gqlrecover/internal/report"
	"github.com/ogulcanaydogan/gqlrecover/internal/store"
	"github.com/ogulcanaydogan/gqlrecover/pkg/types"
)

func newInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default " + config.DefaultPath,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if fileExists(config.DefaultPath) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", config.DefaultPath)
			}
			if err := os.WriteFile(config.DefaultPath, []byte(config.DefaultYAML), 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), config.DefaultPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	return cmd
}

type extractFlags struct {
	outDir           string
	chunkID          string
	chunkFile        string
	allKinds         bool
	scalarNames      bool
	collision        string
	determinismCheck int
	reportFormat     string
}

func newExtractCommand(g *globals) *cobra.Command {
	f := &extractFlags{}
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Recover queries.graphql and schema.graphql",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			applyExtractFlags(cmd, f, &s.cfg)
			if err := config.Validate(s.cfg); err != nil {
				return err
			}
			switch f.reportFormat {
			case "json", "md", "both", "none":
			default:
				return fmt.Errorf("unsupported --report %q (want json, md, both or none)", f.reportFormat)
			}
			ctx, cancel := s.context(cmd.Context())
			defer cancel()

			opts := pipeline.ExtractOptions{
				IncludeAllKinds:  s.cfg.Extract.AllKinds,
				ScalarNames:      s.cfg.Extract.ScalarNames,
				DeterminismCheck: f.determinismCheck,
				Logger:           s.logger,
			}
			var res *pipeline.Result
			if f.chunkFile != "" {
				src, err := chunk.ReadFile(f.chunkFile)
				if err != nil {
					return err
				}
				res, err = pipeline.RunOffline(ctx, src, s.cfg.ChunkID, opts)
				if err != nil {
					return failure(err)
				}
			} else {
				if err := s.connect(); err != nil {
					return err
				}
				defer s.close()
				p := pipeline.New(s.getter, pipeline.Options{
					BaseURL:         s.cfg.BaseURL,
					ChunkID:         s.cfg.ChunkID,
					BuildIDMarker:   s.cfg.BuildIDMarker,
					CollisionPolicy: collisionPolicy(s.cfg),
					Extract:         opts,
					Logger:          s.logger,
				})
				res, err = p.Run(ctx)
				if err != nil {
					return failure(err)
				}
			}

			files := []store.File{
				{Name: s.cfg.Output.QueriesFile, Content: []byte(res.Queries)},
				{Name: s.cfg.Output.SchemaFile, Content: []byte(res.Schema)},
			}
			if f.reportFormat != "none" {
				artifacts := make([]report.Artifact, 0, len(files))
				for _, file := range files {
					artifacts = append(artifacts, artifactOf(s.cfg.Output.Dir, file))
				}
				r := report.Build(res, artifacts, report.Meta{
					BaseURL:         s.cfg.BaseURL,
					CollisionPolicy: collisionPolicy(s.cfg),
					DeterminismRuns: f.determinismCheck,
					Version:         version,
				})
				if err := report.Validate(r); err != nil {
					return err
				}
				extra, err := reportFiles(r, f.reportFormat)
				if err != nil {
					return err
				}
				files = append(files, extra...)
			}
			written, err := store.WriteAll(s.cfg.Output.Dir, files)
			if err != nil {
				return err
			}
			for _, w := range written {
				fmt.Fprintln(cmd.OutOrStdout(), w.Path)
			}
			s.logger.Info("extraction complete", "operations", len(res.Operations), "types", len(res.Types), "digest", res.Digest)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.outDir, "out", "", "output directory (default from config)")
	fl.StringVar(&f.chunkID, "chunk-id", "", "chunk id to extract (default from config)")
	fl.StringVar(&f.chunkFile, "chunk-file", "", "extract from a saved chunk instead of the live site")
	fl.BoolVar(&f.allKinds, "all-kinds", false, "also emit scalar, enum, interface and input declarations")
	fl.BoolVar(&f.scalarNames, "scalar-names", false, "print scalar names instead of SCALAR")
	fl.StringVar(&f.collision, "collision", "", "chunk id collision policy: first-wins or last-wins")
	fl.IntVar(&f.determinismCheck, "determinism-check", 1, "extract this many times and require identical output")
	fl.StringVar(&f.reportFormat, "report", "json", "run report: json, md, both or none")
	return cmd
}

func applyExtractFlags(cmd *cobra.Command, f *extractFlags, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.Output.Dir = f.outDir
	}
	if flags.Changed("chunk-id") {
		cfg.ChunkID = f.chunkID
	}
	if flags.Changed("all-kinds") {
		cfg.Extract.AllKinds = f.allKinds
	}
	if flags.Changed("scalar-names") {
		cfg.Extract.ScalarNames = f.scalarNames
	}
	if flags.Changed("collision") {
		cfg.Extract.CollisionPolicy = f.collision
	}
}

func collisionPolicy(cfg config.Config) types.CollisionPolicy {
	return types.CollisionPolicy(cfg.Extract.CollisionPolicy)
}

// failure gives a nondeterministic run its own exit code. Stage errors
// are mapped by exitCode.
func failure(err error) error {
	if errors.Is(err, pipeline.ErrNondeterministic) {
		return cliError{code: exitNondeterministic, err: err}
	}
	return err
}

func artifactOf(dir string, f store.File) report.Artifact {
	w := store.Describe(dir, f)
	return report.Artifact{Name: w.Name, Path: w.Path, Digest: w.Digest, Size: w.Size}
}

func reportFiles(r report.Report, format string) ([]store.File, error) {
	var out []store.File
	if format == "json" || format == "both" {
		raw, err := report.MarshalJSON(r)
		if err != nil {
			return nil, err
		}
		out = append(out, store.File{Name: "report.json", Content: raw})
	}
	if format == "md" || format == "both" {
		out = append(out, store.File{Name: "report.md", Content: []byte(report.BuildMarkdown(r))})
	}
	return out, nil
}

func newBuildIDCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "build-id",
		Short: "Print the build id of the current deployment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			if err := s.connect(); err != nil {
				return err
			}
			defer s.close()
			ctx, cancel := s.context(cmd.Context())
			defer cancel()
			loc, err := s.newPipeline(s.cfg.ChunkID).Locate(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), loc.BuildID)
			return nil
		},
	}
}

func newManifestCommand(g *globals) *cobra.Command {
	var collision string
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Print the build manifest and chunk index as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("collision") {
				s.cfg.Extract.CollisionPolicy = collision
				if err := config.Validate(s.cfg); err != nil {
					return err
				}
			}
			if err := s.connect(); err != nil {
				return err
			}
			defer s.close()
			ctx, cancel := s.context(cmd.Context())
			defer cancel()
			loc, err := s.newPipeline(s.cfg.ChunkID).Locate(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), loc)
		},
	}
	cmd.Flags().StringVar(&collision, "collision", "", "chunk id collision policy: first-wins or last-wins")
	return cmd
}

func newChunkCommand(g *globals) *cobra.Command {
	var chunkID, outPath string
	cmd := &cobra.Command{
		Use:   "chunk",
		Short: "Download the target chunk for offline extraction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("chunk-id") {
				s.cfg.ChunkID = chunkID
			}
			if err := s.connect(); err != nil {
				return err
			}
			defer s.close()
			ctx, cancel := s.context(cmd.Context())
			defer cancel()
			p := s.newPipeline(s.cfg.ChunkID)
			loc, err := p.Locate(ctx)
			if err != nil {
				return err
			}
			src, err := p.FetchChunk(ctx, loc)
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = s.cfg.ChunkID + ".js"
			}
			w, err := store.WriteFile(outPath, []byte(src.Text))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), w.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&chunkID, "chunk-id", "", "chunk id (default from config)")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default <chunk-id>.js)")
	return cmd
}

func newReportCommand() *cobra.Command {
	var inPath, outPath string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a Markdown report from a JSON run report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if inPath == "" || outPath == "" {
				return fmt.Errorf("--in and --out are required")
			}
			r, err := report.ReadJSON(inPath)
			if err != nil {
				return err
			}
			if err := report.WriteMarkdown(outPath, r); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "run report json input")
	cmd.Flags().StringVar(&outPath, "out", "", "markdown output")
	return cmd
}

var newUploader = func(cmd *cobra.Command, cfg config.PublishConfig) (store.Uploader, error) {
	s3, err := store.NewS3Store(store.S3Config{
		Endpoint:  cfg.Endpoint,
		Region:    cfg.Region,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Bucket:    cfg.Bucket,
		UseSSL:    cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	if err := s3.EnsureBucket(cmd.Context()); err != nil {
		return nil, err
	}
	return s3, nil
}

func newPublishCommand(g *globals) *cobra.Command {
	var runDir string
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload a run's artifacts to S3-compatible storage under <run-id>/",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			if runDir == "" {
				runDir = s.cfg.Output.Dir
			}
			if !s.cfg.PublishEnabled() {
				return fmt.Errorf("publish.endpoint and publish.bucket must be configured")
			}
			reportPath := filepath.Join(runDir, "report.json")
			r, err := report.ReadJSON(reportPath)
			if err != nil {
				return err
			}
			paths := []string{reportPath}
			for _, a := range r.Artifacts {
				paths = append(paths, filepath.Join(runDir, a.Name))
			}
			if md := filepath.Join(runDir, "report.md"); fileExists(md) {
				paths = append(paths, md)
			}
			if err := verifyArtifacts(runDir, r); err != nil {
				return err
			}
			up, err := newUploader(cmd, s.cfg.Publish)
			if err != nil {
				return err
			}
			keys, err := store.Publish(cmd.Context(), up, r.RunID, paths, s.logger)
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&runDir, "run", "", "directory holding report.json and its artifacts (default output.dir)")
	return cmd
}

// verifyArtifacts refuses to publish files that changed after the
// report recorded their digests.
func verifyArtifacts(dir string, r report.Report) error {
	for _, a := range r.Artifacts {
		digest, _, err := hash.File(filepath.Join(dir, a.Name))
		if err != nil {
			return err
		}
		if digest != a.Digest {
			return fmt.Errorf("%s changed since the report was written: %s != %s", a.Name, digest, a.Digest)
		}
	}
	return nil
}
