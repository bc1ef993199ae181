package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/golden-vcr/request-signer/hmac"
	"github.com/spf13/cobra"
)

const secretEnvVar = "APP_SECRET"

type signOptions struct {
	secret    string
	file      string
	canonical bool
}

func (o *signOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.secret, "secret", "", "app secret to sign with (default $"+secretEnvVar+")")
	cmd.Flags().StringVarP(&o.file, "file", "f", "", "JSON request description to read (default stdin)")
}

func (o *signOptions) resolveSecret() (string, error) {
	if o.secret != "" {
		return o.secret, nil
	}
	if s := os.Getenv(secretEnvVar); s != "" {
		return s, nil
	}
	return "", fmt.Errorf("no app secret: pass --secret or set %s", secretEnvVar)
}

func (o *signOptions) readRequest(in io.Reader) (hmac.RequestDescription, error) {
	if o.file != "" {
		f, err := os.Open(o.file)
		if err != nil {
			return hmac.RequestDescription{}, err
		}
		defer f.Close()
		in = f
	}

	var req hmac.RequestDescription
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return hmac.RequestDescription{}, fmt.Errorf("failed to decode request description: %w", err)
	}
	return req, nil
}

func newSignCommand() *cobra.Command {
	o := &signOptions{}
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print the signature for a request description.",
		Long: `Print the signature for a request description.

The request description is a JSON object of the form
  {"uri": "...", "qs": {...}, "headers": {...}, "body": ...}
read from --file or from stdin. With --canonical, the string that would be
signed (before it's wrapped in the secret) is printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := o.readRequest(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if o.canonical {
				s, err := hmac.CanonicalString(req)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), s)
				return nil
			}

			secret, err := o.resolveSecret()
			if err != nil {
				return err
			}
			signature, err := hmac.NewSigner(secret).Sign(req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signature)
			return nil
		},
	}
	o.addFlags(cmd)
	cmd.Flags().BoolVar(&o.canonical, "canonical", false, "print the canonical string instead of the signature")
	return cmd
}

func newVerifyCommand() *cobra.Command {
	o := &signOptions{}
	var signature string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a signature against a request description.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := o.readRequest(cmd.InOrStdin())
			if err != nil {
				return err
			}
			secret, err := o.resolveSecret()
			if err != nil {
				return err
			}
			if err := hmac.NewVerifier(secret).Verify(req, signature); err != nil {
				if errors.Is(err, hmac.ErrVerificationFailed) {
					return fmt.Errorf("signature does not match")
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
	o.addFlags(cmd)
	cmd.Flags().StringVar(&signature, "signature", "", "hex-encoded signature to check")
	_ = cmd.MarkFlagRequired("signature")
	return cmd
}
