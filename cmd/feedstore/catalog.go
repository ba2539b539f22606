package main

import (
	"fmt"
	"io"
	"os"

	"github.com/britishfeed/feedstore/config"
	"github.com/britishfeed/feedstore/internal/csvcodec"
	"github.com/spf13/cobra"
)

func newCatalogCmd(loadConfig func() *config.AppConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Export or import the product catalog",
	}
	cmd.AddCommand(newCatalogExportCmd(loadConfig), newCatalogImportCmd(loadConfig))
	return cmd
}

func newCatalogExportCmd(loadConfig func() *config.AppConfig) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog as csv or xlsx",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "xlsx" {
				return fmt.Errorf("unsupported format %q", format)
			}
			application, err := openApplication(loadConfig())
			if err != nil {
				return err
			}
			defer application.Release()

			products, err := application.Catalog().GetAll(commandContext(cmd))
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if format == "xlsx" {
				return csvcodec.ExportXLSX(products, w)
			}
			_, err = io.WriteString(w, csvcodec.Export(products))
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file, stdout when empty")
	return cmd
}

func newCatalogImportCmd(loadConfig func() *config.AppConfig) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Merge a CSV file into the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			application, err := openApplication(loadConfig())
			if err != nil {
				return err
			}
			defer application.Release()

			ctx := commandContext(cmd)
			store := application.Catalog()
			existing, err := store.GetAll(ctx)
			if err != nil {
				return err
			}
			floor, err := store.HighWaterMark(ctx)
			if err != nil {
				return err
			}
			result, err := csvcodec.Import(string(data), existing, csvcodec.WithIDFloor(floor))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintf(out, "dry run: added=%d updated=%d skipped=%d total=%d\n",
					result.Added, result.Updated, result.Skipped, len(result.Products))
				return nil
			}
			saved, err := store.ReplaceAll(ctx, result.Products)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "imported: added=%d updated=%d skipped=%d total=%d\n",
				result.Added, result.Updated, result.Skipped, len(saved))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report the merge without saving")
	return cmd
}
