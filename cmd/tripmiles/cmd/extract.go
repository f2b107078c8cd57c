package cmd

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ifta-mileage/internal/clients/extraction"
	"ifta-mileage/internal/report"
)

var extractAnalyze bool

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [image]",
	Short: "Extract trip sheet fields from a scanned image",
	Long: `Read a scanned trip sheet with a vision model and print the extracted
fields as JSON.

The image argument is a local file or an https URL.

Examples:
  tripmiles extract scan.jpg
  tripmiles extract --analyze scan.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVarP(&extractAnalyze, "analyze", "a", false, "run mileage analysis on the extracted sheet")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	imageURL, err := imageArgToURL(args[0])
	if err != nil {
		return err
	}

	extractor := extraction.NewExtractor(cfg.Extraction.APIKey, cfg.Extraction.Model)
	sheet, err := extractor.ExtractSheet(ctx, imageURL)
	if err != nil {
		return fmt.Errorf("extract trip sheet: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sheet); err != nil {
		return err
	}

	if !extractAnalyze {
		return nil
	}

	analyzer, cleanup, err := buildAnalyzer(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := analyzer.AnalyzeSheet(ctx, sheet)
	if err != nil {
		return err
	}
	fmt.Println()
	return report.WriteTable(os.Stdout, result)
}

// imageArgToURL passes https URLs through and converts local files to data
// URLs for the vision API.
func imageArgToURL(arg string) (string, error) {
	if strings.HasPrefix(arg, "https://") || strings.HasPrefix(arg, "http://") {
		return arg, nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", arg, err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(arg))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)), nil
}
