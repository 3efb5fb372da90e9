package main

import (
	"bufio"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/freedl-go/internal/app"
	"github.com/yourusername/freedl-go/internal/domain"
)

var formatsCmd = &cobra.Command{
	Use:   "formats [url]",
	Short: "List the formats available for a URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApplication(inlineDispatcher)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := resolve(a, args[0])
		if err != nil {
			return err
		}

		printVideoInfo(cmd.OutOrStdout(), res.Info)
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tLABEL")
		for _, f := range res.Formats {
			fmt.Fprintf(w, "%s\t%s\n", f.ID, f.Label)
		}
		return w.Flush()
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download [url]",
	Short: "Download a URL in the given format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatID, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		audioOnly, _ := cmd.Flags().GetBool("audio")

		a, err := newApplication(inlineDispatcher)
		if err != nil {
			return err
		}
		defer a.Close()

		req := domain.DownloadRequest{
			URL:            args[0],
			FormatID:       formatID,
			OutputTemplate: output,
			AudioOnly:      audioOnly,
		}

		// Strict mode only accepts ids from a listing of this URL
		if a.config.Download.StrictFormats {
			if _, err := resolve(a, req.URL); err != nil {
				return err
			}
		}

		return download(cmd, a, req)
	},
}

var getCmd = &cobra.Command{
	Use:   "get [url]",
	Short: "List formats, pick one interactively and download it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		audioOnly, _ := cmd.Flags().GetBool("audio")

		a, err := newApplication(inlineDispatcher)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := resolve(a, args[0])
		if err != nil {
			return err
		}
		if len(res.Formats) == 0 {
			return fmt.Errorf("no formats available for %s", args[0])
		}

		printVideoInfo(cmd.OutOrStdout(), res.Info)
		selected, err := pickFormat(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), res.Formats)
		if err != nil {
			return err
		}

		return download(cmd, a, domain.DownloadRequest{
			URL:            a.session.URL(),
			FormatID:       selected.ID,
			OutputTemplate: output,
			AudioOnly:      audioOnly,
		})
	},
}

func init() {
	downloadCmd.Flags().StringP("format", "f", "", "Format id (see 'freedl formats')")
	downloadCmd.Flags().StringP("output", "o", "", "Output template (default from config)")
	downloadCmd.Flags().Bool("audio", false, "Keep only the audio track")
	downloadCmd.MarkFlagRequired("format")

	getCmd.Flags().StringP("output", "o", "", "Output template (default from config)")
	getCmd.Flags().Bool("audio", false, "Keep only the audio track")
}

func resolve(a *application, url string) (domain.Resolution, error) {
	result := app.Await(func(done func(domain.Result[domain.Resolution])) {
		a.session.Inspect(url, done)
	})
	if !result.OK() {
		return domain.Resolution{}, result.Err()
	}
	return result.Value(), nil
}

func download(cmd *cobra.Command, a *application, req domain.DownloadRequest) error {
	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "Downloading %s (format %s)...\n", req.URL, req.FormatID)

	reported := false
	onProgress := func(p domain.Progress) {
		reported = true
		fmt.Fprintf(stderr, "\r%-60s", progressLine(p))
	}

	result := app.Await(func(done func(domain.Result[domain.Unit])) {
		a.session.StartDownloadWithProgress(req, onProgress, done)
	})
	if reported {
		fmt.Fprintln(stderr)
	}
	if !result.OK() {
		return result.Err()
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Download completed")
	return nil
}

