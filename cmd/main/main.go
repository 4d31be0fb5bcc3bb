package main

import (
	"bytes"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/CTAG07/Babbler/pkg/chain"
	"github.com/CTAG07/Babbler/pkg/corpus"
	"github.com/CTAG07/Babbler/pkg/store"
	"github.com/natefinch/atomic"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	var (
		configPath = flag.String("config", "./config.json", "path to the JSON config file")
		modelName  = flag.String("model", "default", "name of the model to train or generate from")
		trainPath  = flag.String("train", "", "train the model from this corpus file (one sentence per line)")
		count      = flag.Int("n", 0, "number of sentences to generate (0 uses the config value)")
		rngSeed    = flag.Uint64("rngseed", 0, "seed for the random source (0 picks a random seed)")
		listModels = flag.Bool("list", false, "list stored models and exit")
		deleteName = flag.String("delete", "", "delete this stored model and exit")
		exportPath = flag.String("export", "", "export the model as JSON to this file and exit")
		importPath = flag.String("import", "", "import a JSON model from this file under -model")
		version    = flag.Bool("version", false, "print version information and exit")
	)
	flag.Parse()

	if *version {
		fmt.Printf("babbler %s (commit %s, built %s)\n", Version, Commit, BuildDate)
		return
	}

	config, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var logLevel slog.Level
	switch strings.ToLower(config.LogLevel) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err = os.MkdirAll(config.DataDir, 0755); err != nil {
		logger.Error("Failed to create data directory", "dir", config.DataDir, "error", err)
		os.Exit(1)
	}

	db, err := initDB(config.DatabasePath)
	if err != nil {
		logger.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		_ = db.Close()
	}(db)

	if err = store.SetupSchema(db); err != nil {
		logger.Error("Failed to set up schema", "error", err)
		os.Exit(1)
	}

	st, err := store.NewStore(db)
	if err != nil {
		logger.Error("Failed to create model store", "error", err)
		os.Exit(1)
	}
	defer st.Close()
	st.SetLogger(logger)

	if err = run(ctx, config, logger, st, runOptions{
		modelName:  *modelName,
		trainPath:  *trainPath,
		count:      *count,
		rngSeed:    *rngSeed,
		listModels: *listModels,
		deleteName: *deleteName,
		exportPath: *exportPath,
		importPath: *importPath,
	}); err != nil {
		logger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	modelName  string
	trainPath  string
	count      int
	rngSeed    uint64
	listModels bool
	deleteName string
	exportPath string
	importPath string
}

// run dispatches exactly one management action, or the default
// train-then-generate flow.
func run(ctx context.Context, config *Config, logger *slog.Logger, st *store.Store, opts runOptions) error {
	switch {
	case opts.listModels:
		return list(ctx, st)
	case opts.deleteName != "":
		info, err := st.GetModelInfo(ctx, opts.deleteName)
		if err != nil {
			return err
		}
		return st.DeleteModel(ctx, info)
	case opts.exportPath != "":
		return exportModel(ctx, st, opts.modelName, opts.exportPath)
	case opts.importPath != "":
		return importModel(ctx, st, opts.modelName, opts.importPath)
	}

	if opts.trainPath != "" {
		if err := train(ctx, config, logger, st, opts.modelName, opts.trainPath); err != nil {
			return err
		}
	}

	count := opts.count
	if count == 0 {
		count = config.Generate.SentenceCount
	}
	if count > 0 {
		return generate(ctx, st, opts.modelName, count, opts.rngSeed)
	}
	return nil
}

func list(ctx context.Context, st *store.Store) error {
	stats, err := st.GetStats(ctx)
	if err != nil {
		return err
	}
	for _, info := range stats.Models {
		ms := stats.Stats[info.Id]
		fmt.Printf("%s\tstates=%d\ttransitions=%d\n", info.Name, ms.States, ms.Transitions)
	}
	fmt.Printf("total\tstates=%d\ttransitions=%d\n", stats.TotalStates, stats.TotalTrans)
	return nil
}

func train(ctx context.Context, config *Config, logger *slog.Logger, st *store.Store, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	var tokOpts []corpus.TokenizerOption
	if config.Tokenizer.Lowercase {
		tokOpts = append(tokOpts, corpus.WithLowercase())
	}
	sentences, err := corpus.ReadSentences(f, corpus.NewLineTokenizer(tokOpts...))
	if err != nil {
		return fmt.Errorf("failed to read corpus: %w", err)
	}

	builder := corpus.NewBuilder(
		corpus.WithMinCount(config.Train.MinBigramCount),
		corpus.WithLogger(logger),
	)
	model, err := builder.Build(sentences)
	if err != nil {
		return fmt.Errorf("failed to build model: %w", err)
	}

	return st.SaveModel(ctx, name, model)
}

func generate(ctx context.Context, st *store.Store, name string, count int, seed uint64) error {
	model, err := st.LoadModel(ctx, name)
	if err != nil {
		return err
	}

	var chainOpts []chain.Option
	if seed != 0 {
		chainOpts = append(chainOpts, chain.WithRand(rand.New(rand.NewPCG(seed, seed))))
	}
	gen, err := corpus.NewModelGenerator(model, chainOpts...)
	if err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		sentence, err := gen.Babble()
		if err != nil {
			return err
		}
		fmt.Println(sentence)
	}
	return nil
}

func exportModel(ctx context.Context, st *store.Store, name, path string) error {
	model, err := st.LoadModel(ctx, name)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err = model.Export(&buf); err != nil {
		return fmt.Errorf("failed to export model %q: %w", name, err)
	}
	return atomic.WriteFile(path, &buf)
}

func importModel(ctx context.Context, st *store.Store, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open model file: %w", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	model, err := corpus.ImportModel(f)
	if err != nil {
		return err
	}
	// Reject models that would not construct a valid chain before they
	// reach the database.
	if _, err = model.Chain(); err != nil {
		return fmt.Errorf("imported model is not a valid chain: %w", err)
	}
	return st.SaveModel(ctx, name, model)
}
