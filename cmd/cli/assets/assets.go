package assets

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/crucial707/asset-ledger/cmd/cli/config"
	"github.com/crucial707/asset-ledger/cmd/cli/output"
	"github.com/spf13/cobra"
)

type asset struct {
	ID              int    `json:"id"`
	Category        string `json:"category"`
	Brand           string `json:"brand"`
	Serial          string `json:"serial"`
	Quantity        int    `json:"quantity"`
	Location        string `json:"location"`
	ConditionStatus string `json:"condition_status"`
	CreatedByName   string `json:"created_by_name"`
}

// InitAssets registers asset CLI commands on the root command.
func InitAssets(rootCmd *cobra.Command) {
	assetsCmd := &cobra.Command{
		Use:   "assets",
		Short: "Manage inventory assets",
	}

	assetsCmd.AddCommand(
		listCmd(),
		createCmd(),
		deleteCmd(),
		statusCmd(),
		historyCmd(),
	)

	rootCmd.AddCommand(assetsCmd)
}

func requireToken() (string, error) {
	token, err := config.ReadToken()
	if err != nil || token == "" {
		return "", fmt.Errorf("not logged in; run: ledger login")
	}
	return token, nil
}

func listCmd() *cobra.Command {
	var search string
	var page, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken()
			if err != nil {
				return err
			}

			query := map[string]string{
				"page":  strconv.Itoa(page),
				"limit": strconv.Itoa(limit),
			}
			if search != "" {
				query["search"] = search
			}

			var resp struct {
				Assets []asset `json:"assets"`
				Total  int     `json:"total"`
				Page   int     `json:"page"`
			}
			if err := config.Do(http.MethodGet, "asset", token, query, nil, &resp); err != nil {
				return err
			}

			rows := make([][]interface{}, 0, len(resp.Assets))
			for _, a := range resp.Assets {
				rows = append(rows, []interface{}{
					a.ID, a.Category, a.Brand, a.Serial, a.Quantity, a.Location, a.ConditionStatus, a.CreatedByName,
				})
			}
			output.RenderTable(
				[]string{"ID", "Category", "Brand", "Serial", "Qty", "Location", "Condition", "Created By"},
				rows,
			)
			fmt.Printf("%d assets total (page %d)\n", resp.Total, resp.Page)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Search term")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 10, "Page size")

	return cmd
}

func createCmd() *cobra.Command {
	var category, brand, serial, location, notes string
	var quantity int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an asset",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken()
			if err != nil {
				return err
			}

			payload := map[string]any{
				"category": category,
				"brand":    brand,
				"serial":   serial,
				"quantity": quantity,
				"location": location,
				"notes":    notes,
			}
			var resp struct {
				Success bool  `json:"success"`
				Asset   asset `json:"asset"`
			}
			if err := config.Do(http.MethodPost, "", token, nil, payload, &resp); err != nil {
				return err
			}
			fmt.Printf("Created asset %d (serial %s)\n", resp.Asset.ID, resp.Asset.Serial)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Category")
	cmd.Flags().StringVar(&brand, "brand", "", "Brand")
	cmd.Flags().StringVar(&serial, "serial", "", "Unique serial")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "Quantity")
	cmd.Flags().StringVar(&location, "location", "", "Location")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-text notes")

	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an asset (its audit trail and history remain)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken()
			if err != nil {
				return err
			}
			if err := config.Do(http.MethodDelete, "", token, map[string]string{"id": args[0]}, nil, nil); err != nil {
				return err
			}
			fmt.Printf("Deleted asset %s\n", args[0])
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "status <id> <new-status>",
		Short: "Change an asset's condition status",
		Long:  "Change an asset's condition status (Good, Lost, Damaged, Decommissioned). A reason is required.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken()
			if err != nil {
				return err
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid asset id %q", args[0])
			}
			if reason == "" {
				return fmt.Errorf("--reason is required")
			}

			payload := map[string]any{
				"asset_id":   id,
				"new_status": args[1],
				"reason":     reason,
			}
			if err := config.Do(http.MethodPost, "change_status", token, nil, payload, nil); err != nil {
				return err
			}
			fmt.Printf("Asset %d is now %s\n", id, args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Reason for the change (required)")

	return cmd
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show an asset's status history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := requireToken()
			if err != nil {
				return err
			}

			var entries []struct {
				OldStatus     *string `json:"old_status"`
				NewStatus     string  `json:"new_status"`
				ChangedByName string  `json:"changed_by_name"`
				ChangeReason  string  `json:"change_reason"`
				CreatedAt     string  `json:"created_at"`
			}
			if err := config.Do(http.MethodGet, "asset_history", token, map[string]string{"id": args[0]}, nil, &entries); err != nil {
				return err
			}

			rows := make([][]interface{}, 0, len(entries))
			for _, e := range entries {
				oldStatus := "-"
				if e.OldStatus != nil {
					oldStatus = *e.OldStatus
				}
				rows = append(rows, []interface{}{
					e.CreatedAt, oldStatus, e.NewStatus, e.ChangedByName, e.ChangeReason,
				})
			}
			output.RenderTable([]string{"When", "From", "To", "By", "Reason"}, rows)
			return nil
		},
	}
}
