package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/tobot/internal/app"
	"github.com/cognicore/tobot/internal/messaging"
	"github.com/cognicore/tobot/internal/poller"
	"github.com/cognicore/tobot/internal/trainq"
	"github.com/cognicore/tobot/pkg/tobot/config"
)

var (
	configPath string
	verbose    bool
	once       bool
	trainMode  bool
	testMode   bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tobot",
	Short: "Answers guest questions in the host inbox",
	Long: `tobot polls the host inbox, replies to greetings and thanks, and answers
guest questions from the house corpus and the trained association store.

Credentials come from the config file or TOBOT_APIKEY / TOBOT_OAUTHTOKEN.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = app.NewLogger(verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.Flags().BoolVar(&once, "once", false, "Process the inbox once and exit")
	rootCmd.Flags().BoolVar(&trainMode, "training", false, "Walk read threads and queue lessons, never reply")
	rootCmd.Flags().BoolVar(&testMode, "testing", false, "Log replies instead of sending them")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if trainMode {
		cfg.Poll.Training = true
	}
	if testMode {
		cfg.Poll.Testing = true
	}
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to start", zap.Error(err))
	}
	defer engine.Close()

	size, err := engine.Bot.Size(ctx)
	if err != nil {
		logger.Fatal("failed to read store", zap.Error(err))
	}
	sentences, words := engine.Bot.CorpusSize()
	logger.Info("starting up",
		zap.Bool("training", cfg.Poll.Training),
		zap.Bool("testing", cfg.Poll.Testing),
		zap.Int("corpus_sentences", sentences),
		zap.Int("corpus_words", words),
		zap.Int64("db_sentences", size.Sentences),
		zap.Int64("db_words", size.Words),
	)

	p := poller.New(poller.Options{
		Inbox:              messaging.New(cfg.API, logger.Named("inbox")),
		Responder:          engine.Bot,
		Classifier:         engine.Classifier,
		Lessons:            trainq.New(cfg.TrainQueue, logger.Named("trainq")),
		Poll:               cfg.Poll,
		Messages:           cfg.Messages,
		ConfidenceRequired: cfg.Lookup.ConfidenceRequired,
		ThreadLimit:        cfg.API.ThreadLimit,
		Logger:             logger.Named("poller"),
	})

	if once {
		err = p.RunOnce(ctx)
	} else {
		err = p.Run(ctx)
	}

	st := p.Stats()
	logger.Info("shutting down",
		zap.Int("threads", st.Threads),
		zap.Int("replies", st.Replies),
		zap.Int("no_response", st.NoResponse),
		zap.Int("lessons", st.Lessons),
		zap.Int("errors", st.Errors),
	)
	return err
}
