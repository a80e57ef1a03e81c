package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/metcalfc/ebr/internal/config"
	"github.com/metcalfc/ebr/internal/reader"
	"github.com/metcalfc/ebr/internal/state"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfgFile string
	cfg     *config.Config
	logFile io.Closer
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ebr [directory | file.epub]",
		Short: "Terminal EPUB reader",
		Long: `ebr reads EPUB books in the terminal.

Given a directory (default: the configured library, or the current directory)
it lists the books found there and opens the one you choose. Reading position,
bookmarks and search history are saved per book and restored next time.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRead,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/ebr/config.yaml)")
	root.PersistentFlags().String("state-dir", "", "directory for sessions and preferences (default: $XDG_STATE_HOME/ebr)")
	root.PersistentFlags().String("export-dir", "", "directory for saved pages and books (default: current directory)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().String("log-file", "", "log file (default: <state-dir>/ebr.log)")
	root.Flags().Bool("fresh", false, "Ignore saved reading position")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		logFile, err = setupLogging(cfg)
		return err
	}
	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
		}
	}

	root.AddCommand(newListCmd(), newForgetCmd(), newVersionCmd())
	return root
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [directory]",
		Short: "List the EPUB files in a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := cfg.Library
			if len(args) > 0 {
				dir = args[0]
			}
			books, err := reader.ScanLibrary(dir)
			if err != nil {
				return err
			}
			printLibrary(cmd.OutOrStdout(), books)
			return nil
		},
	}
}

func newForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget <file.epub>...",
		Short: "Delete the saved session of a book",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := state.NewStore(cfg.StateDir)
			for _, arg := range args {
				id := state.BookID(arg)
				if err := store.Clear(id); err != nil {
					return err
				}
				logrus.WithField("book", id).Info("Session cleared")
				fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(fmt.Sprintf("Forgot '%s'.", id)))
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ebr %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// setupLogging sends logrus output to the configured file; the terminal
// belongs to the reading view.
func setupLogging(cfg *config.Config) (io.Closer, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logrus.SetOutput(f)
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})
	return f, nil
}

func printLibrary(w io.Writer, books []reader.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, errorStyle.Render("No EPUB files found in the directory."))
		return
	}
	fmt.Fprintln(w, headerStyle.Render("Available EPUB files:"))
	for i, b := range books {
		fmt.Fprintln(w, okStyle.Render(fmt.Sprintf("%d. %s by %s (%d pages, %s, %s)",
			i+1, b.Metadata.Title, b.Metadata.Author, b.Pages, b.Metadata.Date, b.Metadata.Language)))
		fmt.Fprintln(w)
	}
}

func runRead(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	target := cfg.Library
	if len(args) > 0 {
		target = args[0]
	}

	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	path := target
	if info.IsDir() {
		books, err := reader.ScanLibrary(target)
		if err != nil {
			return err
		}
		if len(books) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render("No EPUB files found in the directory."))
			return nil
		}
		path, err = chooseBook(ctx, books)
		if err != nil || path == "" {
			return err
		}
	}

	m, err := openBook(path, state.NewStore(cfg.StateDir), cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(*model); ok {
		fm.persist()
	}
	switch {
	case errors.Is(err, tea.ErrProgramKilled), errors.Is(err, tea.ErrInterrupted):
		fmt.Fprintln(cmd.OutOrStdout(), bookStyle.Render("Program exited gracefully."))
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), bookStyle.Render("Exiting program."))
	return nil
}

func chooseBook(ctx context.Context, books []reader.Book) (string, error) {
	final, err := tea.NewProgram(newPicker(books), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
			return "", nil
		}
		return "", err
	}
	return final.(picker).choice, nil
}

// openBook extracts a book and restores its saved session.
func openBook(path string, store *state.Store, cfg *config.Config) (*model, error) {
	md, err := reader.ReadMetadata(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read '%s': %w", path, err)
	}
	doc, err := reader.ExtractPages(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read '%s': %w", path, err)
	}
	if doc.PageCount() == 0 {
		return nil, fmt.Errorf("no text to read in '%s'", path)
	}

	log := logrus.WithField("book", path)

	prefs, err := store.LoadPreferences()
	if err != nil {
		log.WithError(err).Warn("Using default preferences")
	}

	bookID := state.BookID(path)
	sess, err := store.LoadSession(bookID)
	if err != nil {
		log.WithError(err).Warn("Starting a new session")
	}
	if cfg.Fresh {
		sess.Page, sess.Offset, sess.Progress = 0, 0, 0
	}

	fingerprint, err := state.Fingerprint(path)
	if err != nil {
		log.WithError(err).Warn("Failed to fingerprint archive")
	}
	mismatch := sess.Fingerprint != "" && fingerprint != "" && sess.Fingerprint != fingerprint
	if fingerprint != "" {
		sess.Fingerprint = fingerprint
	}

	m := newModel(doc, md, store, prefs, bookID, sess)
	m.exportDir = cfg.ExportDir

	if m.toc, err = reader.Contents(path, doc); err != nil {
		log.WithError(err).Debug("No table of contents")
	}

	if mismatch {
		log.WithField("session", bookID).Warn("Session was saved for a different archive with the same name")
		m.say(warnStyle, "Note: the saved session for '%s' belongs to a different file with the same name.", bookID)
	}
	log.WithFields(logrus.Fields{
		"pages": doc.PageCount(),
		"page":  sess.Page,
	}).Info("Opened book")
	return m, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
