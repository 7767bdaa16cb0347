package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reelproxy/internal/extract"
	"reelproxy/internal/fetch"
	"reelproxy/internal/httputil"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <post-url>",
	Short: "Resolve a post URL to its video and thumbnail, printed as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  resolveRun,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

// resolveRun runs the full fetch and extract pipeline once from the CLI,
// without going through the HTTP layer.
func resolveRun(cmd *cobra.Command, args []string) error {
	target := args[0]

	if err := httputil.ValidateURL(target); err != nil {
		return fmt.Errorf("invalid post URL: %w", err)
	}
	if !httputil.HostAllowed(target, cfg.AllowedPostHosts) {
		return fmt.Errorf("unsupported post host in %q", target)
	}

	opts, err := fetch.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	fetcher := fetch.New(opts, logger)

	page, err := fetcher.FetchPage(context.Background(), target)
	if err != nil {
		return fmt.Errorf("fetching post: %w", err)
	}
	logger.Debug().Stringer("source", page.Source).Int("bytes", len(page.HTML)).Msg("page fetched")

	res := extract.Run(page.HTML)

	out := struct {
		Video      string `json:"video,omitempty"`
		Thumbnail  string `json:"thumbnail,omitempty"`
		Source     string `json:"source"`
		FetchedVia string `json:"fetched_via"`
	}{
		Video:      res.VideoURL,
		Thumbnail:  res.ThumbnailURL,
		Source:     res.Method.String(),
		FetchedVia: page.Source.String(),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
