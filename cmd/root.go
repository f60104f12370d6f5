package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"arboric/canopy/internal/store"
)

var (
	dbPath  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "canopy",
	Short: "Canopy taxonomy closure and cross-reference analysis",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to .canopy.db database")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log diagnostics to stderr")
}

// DiscoverDB finds the database path using priority: env > flag > walk-up > XDG fallback
func DiscoverDB() (string, error) {
	// 1. Environment variable
	if envPath := os.Getenv("CANOPY_DB"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	// 2. CLI flag
	if dbPath != "" {
		if _, err := os.Stat(dbPath); err == nil {
			return dbPath, nil
		}
		return "", fmt.Errorf("database not found at --db path: %s", dbPath)
	}

	// 3. Walk up from CWD
	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, ".canopy.db")
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	// 4. XDG fallback
	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".local", "share", "canopy", "canopy.db")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", fmt.Errorf("no .canopy.db found (set CANOPY_DB, use --db, or run from a directory containing .canopy.db)")
}

// OpenDatabase discovers and opens the database
func OpenDatabase() (*store.DB, error) {
	path, err := DiscoverDB()
	if err != nil {
		return nil, err
	}
	slog.Debug("opening database", "path", path)
	return store.OpenDB(path)
}

// ResolveTerm finds a term by numeric ID, exact name, or name prefix.
func ResolveTerm(d *store.DB, reference string) (*store.Term, error) {
	// 1. Numeric ID
	if tid, err := strconv.ParseInt(reference, 10, 64); err == nil {
		term, err := d.GetTerm(tid)
		if err != nil {
			return nil, err
		}
		if term != nil {
			return term, nil
		}
		return nil, fmt.Errorf("term not found: %s", reference)
	}

	// 2. Name lookup (exact, then prefix)
	matches, err := d.TermsByName(reference, 10)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 1:
		return &matches[0], nil
	case 0:
		return nil, fmt.Errorf("term not found: %s", reference)
	default:
		lines := make([]string, len(matches))
		for i, m := range matches {
			lines[i] = fmt.Sprintf("  %d %s (%s)", m.ID, m.Name, m.Vocabulary)
		}
		return nil, fmt.Errorf("ambiguous reference '%s'. %d matches:\n%s\nUse a term ID instead.",
			reference, len(matches), joinLines(lines))
	}
}

func joinLines(lines []string) string {
	result := ""
	for i, l := range lines {
		if i > 0 {
			result += "\n"
		}
		result += l
	}
	return result
}
