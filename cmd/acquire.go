package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/s0up4200/gplay/playstore"
)

var (
	forceLogin     bool
	additionalFile int
	checkDownload  bool
	verifyDownload bool
	useGzip        bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and print the auth token",
	Long: `Exchange the configured credentials for an auth token. Store the
printed token as account.auth_token to skip the login handshake.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := client.Login(cmd.Context(), forceLogin)
		if err != nil {
			return fmt.Errorf("failed to log in: %w", err)
		}
		fmt.Println(token)
		return nil
	},
}

var deliveryCmd = &cobra.Command{
	Use:   "delivery <package> [version-code]",
	Short: "Show delivery data for an owned app",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		vc, err := versionCode(ctx, args)
		if err != nil {
			return err
		}

		data, err := client.DownloadInfo(ctx, args[0], vc)
		if err != nil {
			return describeAcquireError(err)
		}

		printDelivery(data)
		return nil
	},
}

var downloadInfoCmd = &cobra.Command{
	Use:   "download-info <package> [version-code]",
	Short: "Resolve an authenticated download request",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		vc, err := versionCode(ctx, args)
		if err != nil {
			return err
		}

		data, err := client.DownloadInfo(ctx, args[0], vc)
		if err != nil {
			return describeAcquireError(err)
		}

		if verifyDownload {
			return verify(ctx, args[0], data)
		}

		dr, err := client.DownloadRequestFor(data, additionalFile)
		if err != nil {
			return describeAcquireError(err)
		}

		fmt.Printf("URL: %s\n", dr.URL)
		for _, c := range dr.Cookies {
			fmt.Printf("Cookie: %s\n", c.String())
		}
		for k := range dr.Header {
			fmt.Printf("Header: %s: %s\n", k, dr.Header.Get(k))
		}

		if !checkDownload {
			return nil
		}

		resp, err := client.OpenDownload(ctx, dr)
		if err != nil {
			return fmt.Errorf("download check failed: %w", err)
		}
		resp.Body.Close()

		fmt.Printf("✓ Download reachable (%s, %d bytes)\n", resp.Header.Get("Content-Type"), resp.ContentLength)
		return nil
	},
}

// versionCode returns the version code argument, or looks up the
// current one when it was omitted
func versionCode(ctx context.Context, args []string) (int, error) {
	if len(args) > 1 {
		vc, err := strconv.Atoi(args[1])
		if err != nil {
			return 0, fmt.Errorf("invalid version code %q: %w", args[1], err)
		}
		return vc, nil
	}

	doc, err := client.Details(ctx, args[0])
	if err != nil {
		return 0, fmt.Errorf("failed to look up version code: %w", err)
	}

	vc := int(doc.VersionCode())
	logger.Debug().Str("package", args[0]).Int("versionCode", vc).Msg("Resolved current version")
	return vc, nil
}

// verify streams the main artifact and checks it against the delivery
// signature
func verify(ctx context.Context, pkg string, data *playstore.DeliveryData) error {
	bar := newProgressBar("Verifying: ")
	result, err := client.VerifyDownload(ctx, data, playstore.VerifyOptions{
		Gzipped:    useGzip,
		WrapReader: bar.Wrap,
	})
	bar.Finish()
	if err != nil {
		return fmt.Errorf("failed to verify download: %w", err)
	}

	if !result.Match() {
		return fmt.Errorf("signature mismatch for %s: got %s, want %s", pkg, result.SHA1, result.Expected)
	}

	fmt.Printf("✓ Verified %s (%d bytes, sha1 %s)\n", pkg, result.Bytes, result.SHA1)
	return nil
}

func describeAcquireError(err error) error {
	var notFree *playstore.AppNotFreeError
	if errors.As(err, &notFree) {
		return fmt.Errorf("%s must be purchased first (%s)", notFree.Package, notFree.Price)
	}
	return fmt.Errorf("failed to get download info: %w", err)
}

func init() {
	loginCmd.Flags().BoolVar(&forceLogin, "force", false, "log in even if a token is already held")
	downloadInfoCmd.Flags().IntVar(&additionalFile, "additional", -1, "resolve the additional file at this index instead")
	downloadInfoCmd.Flags().BoolVar(&checkDownload, "check", false, "open the download to verify it is reachable")
	downloadInfoCmd.Flags().BoolVar(&verifyDownload, "verify", false, "stream the artifact and check its SHA-1 against the signature")
	downloadInfoCmd.Flags().BoolVar(&useGzip, "gzip", false, "use the gzipped variant with --verify")
	// the signature only covers the main artifact
	downloadInfoCmd.MarkFlagsMutuallyExclusive("additional", "verify")

	rootCmd.AddCommand(loginCmd, deliveryCmd, downloadInfoCmd)
}
