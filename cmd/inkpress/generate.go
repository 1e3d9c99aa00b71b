package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"inkpress/internal/apperr"
	"inkpress/internal/batch"
	"inkpress/internal/database"
	"inkpress/internal/models"
	"inkpress/internal/slug"
	"inkpress/internal/store"
	"inkpress/internal/textgen"
)

var (
	flagTitlesFile string
	flagProvider   string
)

var generateCmd = &cobra.Command{
	Use:   "generate [titles...]",
	Short: "Generate draft articles from titles",
	Long: "Generate one draft article per title, in order. Titles come from the arguments " +
		"and, with --file, from a file with one title per line (use - for stdin). " +
		"The first failure stops the run; articles already stored are kept.",
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&flagTitlesFile, "file", "f", "", "read titles from a file, one per line")
	generateCmd.Flags().StringVar(&flagProvider, "provider", "", "AI provider for this run (default $AI_PROVIDER)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	titles := append([]string(nil), args...)
	if flagTitlesFile != "" {
		fromFile, err := loadTitles(cmd.InOrStdin(), flagTitlesFile)
		if err != nil {
			return err
		}
		titles = append(titles, fromFile...)
	}
	titles = batch.CleanTitles(titles)
	if len(titles) == 0 {
		return errors.New("no titles given")
	}
	if flagProvider == "" {
		if err := cfg.RequireAI(); err != nil {
			return err
		}
	}
	registry, err := newRegistry(flagProvider)
	if err != nil {
		return err
	}

	// An interrupt stops the batch before the next title starts; the title
	// in flight runs to completion under its own deadline.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		return err
	}

	articles := store.NewArticleStore(db)
	runner := batch.NewRunner(textgen.New(registry), slug.NewAllocator(articles), articles, cfg.SlugMaxAttempts).
		WithItemTimeout(cfg.AI.Timeout)
	return generateAll(ctx, cmd.OutOrStdout(), runner, titles)
}

// batchGenerator is the part of batch.Runner the command drives.
type batchGenerator interface {
	GenerateBatch(ctx context.Context, titles []string, onProgress batch.ProgressFunc) ([]models.Article, error)
}

// generateAll runs the batch, printing one N/M line as each title starts
// and the stored slug once it is done.
func generateAll(ctx context.Context, out io.Writer, gen batchGenerator, titles []string) error {
	created, err := gen.GenerateBatch(ctx, titles, func(p batch.Progress) {
		if p.State != batch.StateRunning {
			return
		}
		if p.Article == nil {
			fmt.Fprintf(out, "%d/%d %s\n", p.Index, p.Total, p.Title)
			return
		}
		fmt.Fprintf(out, "    stored /%s (%s)\n", p.Article.Slug, p.Article.ID)
	})

	if err != nil {
		var berr *batch.Error
		if errors.As(err, &berr) {
			fmt.Fprintf(out, "%d of %d articles stored before the failure\n", len(created), berr.Total)
			return errors.New(apperr.Message(berr))
		}
		return err
	}
	fmt.Fprintf(out, "done: %d articles stored as drafts\n", len(created))
	return nil
}

// loadTitles reads the titles file, or stdin for "-".
func loadTitles(stdin io.Reader, path string) ([]string, error) {
	if path == "-" {
		return readTitles(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open titles file: %w", err)
	}
	defer f.Close()
	return readTitles(f)
}

// readTitles returns one title per line. Blank lines and lines starting
// with # are skipped.
func readTitles(r io.Reader) ([]string, error) {
	var titles []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		titles = append(titles, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read titles: %w", err)
	}
	return titles, nil
}
