package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/gqlrecover/internal/config"
	"github.com/ogulcanaydogan/gqlrecover/internal/fetch"
	"github.com/ogulcanaydogan/gqlrecover/internal/logging"
	"github.com/ogulcanaydogan/gqlrecover/internal/pipeline"
	"github.com/ogulcanaydogan/gqlrecover/internal/stageerr"
)

var version = "dev"

// Exit codes. Stage failures map to one code per error kind.
const (
	exitOther            = 1
	exitNetwork          = 20
	exitNotFound         = 21
	exitParse            = 22
	exitStructural       = 23
	exitUnexpectedShape  = 24
	exitMalformedType    = 25
	exitNondeterministic = 26
)

type cliError struct {
	code int
	err  error
}

func (e cliError) Error() string { return e.err.Error() }
func (e cliError) Unwrap() error { return e.err }

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var ce cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	kind, ok := stageerr.KindOf(err)
	if !ok {
		return exitOther
	}
	switch kind {
	case stageerr.KindNetwork:
		return exitNetwork
	case stageerr.KindNotFound:
		return exitNotFound
	case stageerr.KindParse:
		return exitParse
	case stageerr.KindStructuralMismatch:
		return exitStructural
	case stageerr.KindUnexpectedShape:
		return exitUnexpectedShape
	case stageerr.KindMalformedType:
		return exitMalformedType
	default:
		return exitOther
	}
}

// globals are the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	logLevel   string
	logFormat  string
	baseURL    string
	cacheDir   string
	timeout    time.Duration
	stderr     io.Writer
}

func newRootCommand() *cobra.Command {
	g := &globals{stderr: os.Stderr}
	root := &cobra.Command{
		Use:           "gqlrecover",
		Short:         "Recover a GraphQL schema and operations from a Next.js bundle",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "config file (default "+config.DefaultPath+" if present)")
	pf.StringVar(&g.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&g.logFormat, "log-format", "auto", "log format: auto, text, json")
	pf.StringVar(&g.baseURL, "base-url", "", "site root URL")
	pf.StringVar(&g.cacheDir, "cache-dir", "", "persist fetched responses in this directory")
	pf.DurationVar(&g.timeout, "timeout", 0, "overall deadline for the run (default from config)")

	root.AddCommand(newInitCommand())
	root.AddCommand(newExtractCommand(g))
	root.AddCommand(newBuildIDCommand(g))
	root.AddCommand(newManifestCommand(g))
	root.AddCommand(newChunkCommand(g))
	root.AddCommand(newReportCommand())
	root.AddCommand(newPublishCommand(g))
	return root
}

// session is the loaded configuration plus the objects built from it.
type session struct {
	cfg    config.Config
	logger *slog.Logger
	getter fetch.Getter
	close  func()
}

func (g *globals) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = g.baseURL
	}
	if flags.Changed("cache-dir") {
		cfg.Cache.Dir = g.cacheDir
	}
	if flags.Changed("timeout") {
		cfg.Timeout = g.timeout
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	lvl, err := logging.ParseLevel(g.logLevel)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(g.stderr, lvl, logging.Format(g.logFormat))
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, close: func() {}}, nil
}

// connect builds the getter chain: HTTP client, optional disk cache,
// then the in-process memo.
func (s *session) connect() error {
	var getter fetch.Getter = fetch.NewClient(fetch.Options{
		Timeout:           s.cfg.Timeout,
		UserAgent:         s.cfg.UserAgent,
		RequestsPerSecond: s.cfg.RequestsPerSecond,
		Logger:            s.logger,
	})
	if s.cfg.Cache.Dir != "" {
		disk, err := fetch.OpenDiskCache(fetch.DiskCacheConfig{Dir: s.cfg.Cache.Dir, TTL: s.cfg.Cache.TTL, Logger: s.logger}, getter)
		if err != nil {
			return err
		}
		s.close = func() {
			if err := disk.Close(); err != nil {
				s.logger.Warn("close cache", "error", err)
			}
		}
		getter = disk
	}
	memo, err := fetch.NewMemo(getter, s.cfg.Cache.Entries)
	if err != nil {
		s.close()
		return err
	}
	s.getter = memo
	return nil
}

func (s *session) context(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, s.cfg.Timeout)
}

func (s *session) newPipeline(chunkID string) *pipeline.Pipeline {
	return pipeline.New(s.getter, pipeline.Options{
		BaseURL:         s.cfg.BaseURL,
		ChunkID:         chunkID,
		BuildIDMarker:   s.cfg.BuildIDMarker,
		CollisionPolicy: collisionPolicy(s.cfg),
		Logger:          s.logger,
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
