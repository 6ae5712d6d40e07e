package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/betafactory/receipted/internal/config"
)

var uploadDocType string

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a receipt photo and print the extracted fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if uploadDocType == "" {
			return errf("document type must not be empty")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if mockFlag {
			cfg.API.Mock = true
		}

		path := args[0]
		file, err := os.Open(path)
		if err != nil {
			return errf("open %s: %w", path, err)
		}
		defer file.Close()

		client, _ := buildBackend(cfg)
		result, err := client.UploadDocument(cmd.Context(), filepath.Base(path), file, uploadDocType)
		if err != nil {
			return errf("upload: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Merchant: %s\n", result.Merchant)
		fmt.Fprintf(out, "Date:     %s", result.PurchaseDate)
		if result.PurchaseTime != "" {
			fmt.Fprintf(out, " %s", result.PurchaseTime)
		}
		fmt.Fprintln(out)
		for _, item := range result.Items {
			fmt.Fprintf(out, "  %-32s %10s\n", item.ItemName, item.ItemCost.StringFixed(2))
		}
		fmt.Fprintf(out, "  %-32s %10s\n", "Total", result.TotalCost.StringFixed(2))
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadDocType, "type", "t", "receipt", "document type sent with the upload")
}
