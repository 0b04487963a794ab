package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/bandsync/internal/client/storage"
	"github.com/iudanet/bandsync/internal/models"
)

type loginFlags struct {
	endpoint  string
	bucket    string
	accessKey string
	region    string
	insecure  bool
}

func (a *App) loginCmd() *cobra.Command {
	var flags loginFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the credentials of the band's cloud bucket",
		Long: `Checks that the bucket is reachable and stores its credentials on this
device. The secret key is asked interactively.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLogin(cmd.Context(), flags)
		},
	}
	cmd.Flags().StringVar(&flags.endpoint, "endpoint", "", "S3 endpoint, host[:port]")
	cmd.Flags().StringVar(&flags.bucket, "bucket", "", "bucket shared by the band")
	cmd.Flags().StringVar(&flags.accessKey, "access-key", "", "access key")
	cmd.Flags().StringVar(&flags.region, "region", "", "bucket region")
	cmd.Flags().BoolVar(&flags.insecure, "insecure", false, "use plain HTTP")
	return cmd
}

func (a *App) runLogin(ctx context.Context, flags loginFlags) error {
	defaults := a.cfg.Cloud
	creds := models.CloudCredentials{
		Region: firstNonEmpty(flags.region, defaults.Region),
		Secure: defaults.Secure && !flags.insecure,
	}

	var err error
	if creds.Endpoint, err = a.prompt(firstNonEmpty(flags.endpoint, defaults.Endpoint), "Endpoint"); err != nil {
		return err
	}
	if creds.Bucket, err = a.prompt(firstNonEmpty(flags.bucket, defaults.Bucket), "Bucket"); err != nil {
		return err
	}
	if creds.AccessKey, err = a.prompt(firstNonEmpty(flags.accessKey, defaults.AccessKey), "Access key"); err != nil {
		return err
	}
	creds.SecretKey = defaults.SecretKey
	if creds.SecretKey == "" {
		if creds.SecretKey, err = a.io.ReadPassword("Secret key: "); err != nil {
			return fmt.Errorf("failed to read secret key: %w", err)
		}
	}
	if creds.Endpoint == "" || creds.Bucket == "" || creds.AccessKey == "" || creds.SecretKey == "" {
		return fmt.Errorf("endpoint, bucket, access key and secret key are required")
	}

	if a.verify != nil {
		a.io.Println("Checking bucket access...")
		if err := a.verify(ctx, creds); err != nil {
			return fmt.Errorf("failed to access bucket %s: %w", creds.Bucket, err)
		}
	}

	if err := a.state.SaveCredentials(ctx, &creds); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	a.logger.Info("Credentials saved", "endpoint", creds.Endpoint, "bucket", creds.Bucket)
	a.io.Printf("Logged in to %s/%s\n", creds.Endpoint, creds.Bucket)
	return nil
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored cloud credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.state.DeleteCredentials(cmd.Context())
			if err != nil && !errors.Is(err, storage.ErrCredentialsNotFound) {
				return fmt.Errorf("failed to delete credentials: %w", err)
			}
			a.io.Println("Logged out. Local library and pending changes are kept.")
			return nil
		},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
