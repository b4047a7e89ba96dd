package cli

import (
	"strings"

	"aurum-life/internal/model"
	"aurum-life/internal/mutate"
	"aurum-life/internal/perm"
	"aurum-life/internal/store"

	"github.com/spf13/cobra"
)

// parseParentRef splits "task:<id>" style references.
func parseParentRef(ref string) (model.ParentType, string, error) {
	parts := strings.SplitN(strings.TrimSpace(ref), ":", 2)
	if len(parts) != 2 {
		return "", "", model.ValidationError{Field: "parent", Msg: "expected <type>:<id> (task|project|journal_entry)"}
	}
	pt, err := model.ParseParentType(parts[0])
	if err != nil {
		return "", "", err
	}
	id := strings.TrimSpace(parts[1])
	if id == "" {
		return "", "", model.ValidationError{Field: "parent", Msg: "missing parent id"}
	}
	return pt, id, nil
}

// checkParent verifies the attachment target exists and belongs to the
// user, same rules the web server applies.
func checkParent(cmd *cobra.Command, app *App, db *store.DB, userID string, pt model.ParentType, parentID string) error {
	switch pt {
	case model.ParentTypeTask:
		if t, ok := db.FindTask(parentID); ok && perm.CanAccessTask(db, userID, t) {
			return nil
		}
		return mutate.NotFoundError{Kind: "task", ID: parentID}
	case model.ParentTypeProject:
		if p, ok := db.FindProject(parentID); ok && perm.CanAccessProject(db, userID, p) {
			return nil
		}
		return mutate.NotFoundError{Kind: "project", ID: parentID}
	case model.ParentTypeJournalEntry:
		entries, err := openJournal(app)
		if err != nil {
			return err
		}
		_, err = entries.Get(cmd.Context(), userID, parentID)
		return err
	default:
		return model.ValidationError{Field: "parentType", Msg: "unknown parent type"}
	}
}

func newAttachCmd(app *App) *cobra.Command {
	var parent string
	var maxBytes int64

	cmd := &cobra.Command{
		Use:   "attach <file>",
		Short: "Attach a local file to a task, project, or journal entry",
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
			pt, parentID, err := parseParentRef(parent)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := checkParent(cmd, app, db, userID, pt, parentID); err != nil {
				return writeErr(cmd, err)
			}

			a, err := s.AddAttachment(db, userID, pt, parentID, args[0], maxBytes)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			_ = s.AppendEvent(userID, "attachment.added", a.ID, map[string]any{
				"filename":   a.Filename,
				"parentType": a.ParentType,
				"parentId":   a.ParentID,
				"sizeBytes":  a.SizeBytes,
			})
			return writeOut(cmd, app, map[string]any{"data": a})
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Attachment target as <type>:<id> (task|project|journal_entry)")
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", 0, "Size cap in bytes (0 = default 50 MiB)")
	_ = cmd.MarkFlagRequired("parent")
	return cmd
}
