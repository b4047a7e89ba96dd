package cli

import (
	"path/filepath"
	"strings"

	"aurum-life/internal/journal"
	"aurum-life/internal/model"

	"github.com/spf13/cobra"
)

func newJournalCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Personal journal (stored outside the snapshot)",
	}
	cmd.AddCommand(newJournalAddCmd(app))
	cmd.AddCommand(newJournalListCmd(app))
	cmd.AddCommand(newJournalShowCmd(app))
	cmd.AddCommand(newJournalSearchCmd(app))
	cmd.AddCommand(newJournalDeleteCmd(app))
	return cmd
}

// openJournal opens the per-store journal. Entries live under
// <dir>/journal, the same tree the web server serves.
func openJournal(app *App) (*journal.Store, error) {
	dir, err := resolveDir(app)
	if err != nil {
		return nil, err
	}
	return journal.Open(filepath.Join(dir, "journal"))
}

func newJournalAddCmd(app *App) *cobra.Command {
	var title, content, mood string
	var tags []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a journal entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			entries, err := openJournal(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			e := &model.JournalEntry{
				UserID:  userID,
				Title:   title,
				Content: content,
				Mood:    model.Mood(mood),
				Tags:    tags,
			}
			if err := entries.Add(e); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(userID, "journal_entry.created", e.ID, map[string]any{"title": e.Title})
			return writeOut(cmd, app, map[string]any{"data": e})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Entry title")
	cmd.Flags().StringVar(&content, "content", "", "Entry body (markdown)")
	cmd.Flags().StringVar(&mood, "mood", "", "Mood (optimistic|inspired|reflective|challenging)")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Tag (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newJournalListCmd(app *App) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			entries, err := openJournal(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			var rows []model.JournalEntry
			if m := strings.TrimSpace(month); m != "" {
				rows, err = entries.List(cmd.Context(), userID, m)
			} else {
				rows, err = entries.ListAll(cmd.Context(), userID)
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, journalListPayload{Data: rows})
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Limit to one month (YYYY-MM)")
	return cmd
}

func newJournalShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <entry-id>",
		Short: "Show one journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			entries, err := openJournal(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			e, err := entries.Get(cmd.Context(), userID, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": e})
		},
	}
	return cmd
}

func newJournalSearchCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search entries by title, content, or tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			entries, err := openJournal(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			rows, err := entries.Search(cmd.Context(), userID, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, journalListPayload{Data: rows})
		},
	}
	return cmd
}

func newJournalDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <entry-id>",
		Short: "Delete a journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			userID, err := currentUserID(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			entries, err := openJournal(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := args[0]
			if err := entries.Delete(cmd.Context(), userID, id); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(userID, "journal_entry.deleted", id, nil)
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": id}})
		},
	}
	return cmd
}
