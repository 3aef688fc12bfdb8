// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/recommendit"
	"github.com/poiesic/recommendit/ai"
	"github.com/poiesic/recommendit/ingestion"
	"github.com/poiesic/recommendit/recommend"
	"github.com/poiesic/recommendit/server"
	"github.com/poiesic/recommendit/storage/badger"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

const envPrefix = "RECOMMENDIT_"

func main() {
	if err := loadEnvFile(envFile()); err != nil {
		log.Fatal(err)
	}
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// envFile returns the dotenv file to load, RECOMMENDIT_ENV_FILE or ".env".
func envFile() string {
	if path := os.Getenv(envPrefix + "ENV_FILE"); path != "" {
		return path
	}
	return ".env"
}

// loadEnvFile loads path into the environment. A missing file is not an error.
// Variables already set take precedence.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func env(name string) []string {
	return []string{envPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))}
}

// sharedFlags can also be set from the YAML file named by --config.
func sharedFlags() []cli.Flag {
	buildDefaults := ingestion.DefaultConfig()
	aiDefaults := ai.DefaultConfig()
	return []cli.Flag{
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "log-level",
			Aliases: []string{"l"},
			Usage:   "Set logging level (debug, info, warn, error)",
			Value:   "info",
			EnvVars: env("log-level"),
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "catalog",
			Usage:   "Path to the assessment catalog CSV",
			Value:   buildDefaults.CatalogPath,
			EnvVars: env("catalog"),
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to the index directory",
			Value:   buildDefaults.IndexDir,
			EnvVars: env("db"),
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "collection",
			Usage:   "Collection name inside the index",
			Value:   buildDefaults.Collection,
			EnvVars: env("collection"),
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "enriched",
			Usage:   "Where to write the catalog with an embedding column (empty to disable)",
			Value:   buildDefaults.EnrichedPath,
			EnvVars: env("enriched"),
		}),
		altsrc.NewBoolFlag(&cli.BoolFlag{
			Name:    "reuse-embeddings",
			Usage:   "Reuse the catalog's embedding column after checking one row against the model",
			Value:   buildDefaults.ReuseEmbeddings,
			EnvVars: env("reuse-embeddings"),
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "backend",
			Usage:   "Embedding backend (openai, ollama)",
			Value:   string(aiDefaults.Backend),
			EnvVars: env("backend"),
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   aiDefaults.EmbeddingHost,
			EnvVars: env("embedding-host"),
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   aiDefaults.EmbeddingModel,
			EnvVars: env("embedding-model"),
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key for the embedding service",
			Value:   aiDefaults.APIKey,
			EnvVars: env("api-key"),
		}),
		altsrc.NewIntFlag(&cli.IntFlag{
			Name:    "batch-size",
			Usage:   "Number of descriptions sent per embedding call",
			Value:   buildDefaults.BatchSize,
			EnvVars: env("batch-size"),
		}),
		altsrc.NewIntFlag(&cli.IntFlag{
			Name:    "pool-size",
			Usage:   "Number of concurrent embedding calls",
			Value:   buildDefaults.PoolSize,
			EnvVars: env("pool-size"),
		}),
		altsrc.NewIntFlag(&cli.IntFlag{
			Name:    "report-interval",
			Usage:   "Report progress every N descriptions",
			Value:   buildDefaults.ReportInterval,
			EnvVars: env("report-interval"),
		}),
		altsrc.NewIntFlag(&cli.IntFlag{
			Name:    "max-retries",
			Usage:   "Maximum attempts per embedding batch",
			Value:   buildDefaults.MaxRetries,
			EnvVars: env("max-retries"),
		}),
		altsrc.NewDurationFlag(&cli.DurationFlag{
			Name:    "retry-delay",
			Usage:   "Base delay for exponential backoff",
			Value:   buildDefaults.RetryDelay,
			EnvVars: env("retry-delay"),
		}),
		altsrc.NewDurationFlag(&cli.DurationFlag{
			Name:    "lock-timeout",
			Usage:   "How long to wait for another build to finish",
			Value:   buildDefaults.LockTimeout,
			EnvVars: env("lock-timeout"),
		}),
	}
}

func newApp() *cli.App {
	shared := sharedFlags()
	flags := append([]cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML file with flag values",
			EnvVars: env("config"),
		},
	}, shared...)

	return &cli.App{
		Name:  "recommendit",
		Usage: "Recommend assessments for a job description or posting",
		Flags: flags,
		Before: func(c *cli.Context) error {
			load := altsrc.InitInputSourceWithContext(shared, altsrc.NewYamlSourceFromFlagFunc("config"))
			if err := load(c); err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return setupLogger(c)
		},
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Build the index if it does not exist",
				Action: buildCommand,
			},
			{
				Name:   "rebuild",
				Usage:  "Re-embed the catalog and replace the index",
				Action: rebuildCommand,
			},
			{
				Name:      "recommend",
				Usage:     "Recommend assessments for a query or job posting URL",
				ArgsUsage: "<query or URL>",
				Action:    recommendCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of assessments to show (1-10)",
						Value:   server.DefaultTopK,
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Print each stage of the recommendation",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve recommendations over HTTP",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Usage:   "Listen address",
						Value:   server.DefaultAddr,
						EnvVars: env("addr"),
					},
				},
			},
			{
				Name:   "inspect",
				Usage:  "Print the index manifest",
				Action: inspectCommand,
			},
		},
	}
}

func aiConfig(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithBackend(ai.Backend(c.String("backend"))),
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAPIKey(c.String("api-key")),
	)
}

func buildConfig(c *cli.Context) *ingestion.Config {
	return &ingestion.Config{
		CatalogPath:     c.String("catalog"),
		IndexDir:        c.String("db"),
		EnrichedPath:    c.String("enriched"),
		Collection:      c.String("collection"),
		ReuseEmbeddings: c.Bool("reuse-embeddings"),
		BatchSize:       c.Int("batch-size"),
		PoolSize:        c.Int("pool-size"),
		MaxRetries:      c.Int("max-retries"),
		RetryDelay:      c.Duration("retry-delay"),
		ReportInterval:  c.Int("report-interval"),
		LockTimeout:     c.Duration("lock-timeout"),
	}
}

func engineConfig(c *cli.Context) *recommendit.Config {
	return &recommendit.Config{
		AI:    aiConfig(c),
		Build: buildConfig(c),
	}
}

func newBuilder(c *cli.Context) (*ingestion.Builder, func(), error) {
	cfg := aiConfig(c)
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	provider, err := recommendit.NewProvider(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create AI provider: %w", err)
	}
	builder, err := ingestion.NewBuilder(buildConfig(c), provider, ingestion.WithProgress(os.Stderr))
	if err != nil {
		provider.Close()
		return nil, nil, err
	}

	fmt.Fprintf(os.Stderr, "Catalog: %s\n", c.String("catalog"))
	fmt.Fprintf(os.Stderr, "Index: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding backend: %s\n", cfg.Backend)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", cfg.EmbeddingHost)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", cfg.EmbeddingModel)
	fmt.Fprintln(os.Stderr)

	return builder, func() { provider.Close() }, nil
}

func buildCommand(c *cli.Context) error {
	builder, closeFn, err := newBuilder(c)
	if err != nil {
		return err
	}
	defer closeFn()

	report, err := builder.Build(c.Context)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	printReport(c, report)
	return nil
}

func rebuildCommand(c *cli.Context) error {
	builder, closeFn, err := newBuilder(c)
	if err != nil {
		return err
	}
	defer closeFn()

	report, err := builder.Rebuild(c.Context)
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}
	printReport(c, report)
	return nil
}

func printReport(c *cli.Context, report *ingestion.BuildReport) {
	w := c.App.Writer
	if report.Skipped {
		fmt.Fprintf(w, "Index %s already exists, nothing to do (use rebuild to replace it)\n", c.String("db"))
		return
	}
	fmt.Fprintf(w, "Indexed %d assessments in %s (%d embedded, %d reused)\n",
		report.Entries, report.Duration.Round(time.Millisecond), report.Embedded, report.Reused)
}

func recommendCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query or URL is required")
	}
	topK := c.Int("top-k")
	if topK < server.MinTopK || topK > server.MaxTopK {
		return fmt.Errorf("top-k must be between %d and %d", server.MinTopK, server.MaxTopK)
	}

	engine, err := recommendit.Open(c.Context, engineConfig(c), recommendit.WithProgress(os.Stderr))
	if err != nil {
		return err
	}
	defer engine.Close()

	var monitor recommend.RecommendMonitor
	if c.Bool("verbose") {
		monitor = &printMonitor{w: c.App.ErrWriter}
	}
	results, err := engine.RecommendWithMonitor(c.Context, query, topK, monitor)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, recommend.FormatAll(results))
	return nil
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Build completes before the listener starts.
	engine, err := recommendit.Open(ctx, engineConfig(c), recommendit.WithProgress(os.Stderr))
	if err != nil {
		return err
	}
	defer engine.Close()

	srv, err := server.New(engine)
	if err != nil {
		return err
	}
	return srv.Listen(ctx, c.String("addr"))
}

func inspectCommand(c *cli.Context) error {
	dir := c.String("db")
	exists, err := ingestion.IndexExists(dir)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("no index at %s, run build first", dir)
	}

	coll, err := badger.OpenCollection(dir, c.String("collection"))
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer coll.Close()

	ctx := context.Background()
	count, err := coll.Count(ctx)
	if err != nil {
		return err
	}
	manifest, err := coll.Manifest(ctx)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Index: %s\n", dir)
	fmt.Fprintf(w, "Collection: %s\n", manifest.Collection)
	fmt.Fprintf(w, "Model: %s\n", manifest.ModelID)
	fmt.Fprintf(w, "Dimension: %d\n", manifest.Dimension)
	fmt.Fprintf(w, "Metric: %s\n", manifest.Metric)
	fmt.Fprintf(w, "Entries: %d (stored %d)\n", manifest.EntryCount, count)
	fmt.Fprintf(w, "Catalog fingerprint: %016x\n", manifest.Fingerprint)
	fmt.Fprintf(w, "Created: %s\n", manifest.CreatedAt.UTC().Format(time.RFC3339))
	if model := c.String("embedding-model"); model != manifest.ModelID {
		fmt.Fprintf(w, "Warning: configured model %q differs from the index model\n", model)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
