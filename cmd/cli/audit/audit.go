package audit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/crucial707/asset-ledger/cmd/cli/config"
	"github.com/crucial707/asset-ledger/cmd/cli/output"
	"github.com/spf13/cobra"
)

type entry struct {
	ID        int             `json:"id"`
	UserName  string          `json:"user_name"`
	Action    string          `json:"action"`
	TableName string          `json:"table_name"`
	RecordID  int             `json:"record_id"`
	OldValues json.RawMessage `json:"old_values"`
	NewValues json.RawMessage `json:"new_values"`
	IPAddress string          `json:"ip_address"`
	CreatedAt string          `json:"created_at"`
}

// InitAudit registers audit log CLI commands on the root command.
func InitAudit(rootCmd *cobra.Command) {
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the audit trail",
	}

	auditCmd.AddCommand(listCmd(), showCmd())
	rootCmd.AddCommand(auditCmd)
}

func requireToken() (string, error) {
	token, err := config.ReadToken()
	if err != nil || token == "" {
		return "", fmt.Errorf("not logged in; run: ledger login")
	}
	return token, nil
}

func listCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent audit entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken()
			if err != nil {
				return err
			}

			query := map[string]string{
				"limit":  strconv.Itoa(limit),
				"offset": strconv.Itoa(offset),
			}
			var entries []entry
			if err := config.Do(http.MethodGet, "audit_log", token, query, nil, &entries); err != nil {
				return err
			}

			rows := make([][]interface{}, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []interface{}{
					e.ID, e.CreatedAt, e.UserName, e.Action, e.TableName, e.RecordID, e.IPAddress,
				})
			}
			output.RenderTable(
				[]string{"ID", "When", "User", "Action", "Table", "Record", "IP"},
				rows,
			)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Max entries")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset")

	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one audit entry with its field snapshots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken()
			if err != nil {
				return err
			}

			var e entry
			if err := config.Do(http.MethodGet, "audit_detail", token, map[string]string{"id": args[0]}, nil, &e); err != nil {
				return err
			}

			b, _ := json.MarshalIndent(e, "", "  ")
			fmt.Println(string(b))
			return nil
		},
	}
}
