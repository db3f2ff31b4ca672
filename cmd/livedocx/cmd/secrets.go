package cmd

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/zeptools/gw-livedocx/sec"
)

var (
	genKey   bool
	tokenSub string
	tokenTTL time.Duration
)

var encryptPasswordCmd = &cobra.Command{
	Use:   "encrypt-password",
	Short: "Encrypt a password for pw_enc",
	Long: `Reads one line from stdin and prints it encrypted with the key in ` + sec.ConfKeyEnv + `.
Put the output into pw_enc of the livedocx config.

Examples:
  livedocx encrypt-password --gen-key           # print a new key
  echo -n 's3cret' | livedocx encrypt-password`,
	Args: cobra.NoArgs,
	RunE: runEncryptPassword,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the render gateway",
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

func init() {
	rootCmd.AddCommand(encryptPasswordCmd, tokenCmd)
	encryptPasswordCmd.Flags().BoolVar(&genKey, "gen-key", false, "print a new random key for "+sec.ConfKeyEnv+" and exit")
	tokenCmd.Flags().StringVar(&tokenSub, "sub", "", "caller name")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("sub")
}

func runEncryptPassword(cmd *cobra.Command, args []string) error {
	if genKey {
		key := make([]byte, chacha20poly1305.KeySize)
		if _, err := rand.Read(key); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), base64.RawURLEncoding.EncodeToString(key))
		return nil
	}
	cipher, err := sec.NewConfCipherFromEnv()
	if err != nil {
		return err
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return errors.New("no password on stdin")
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return errors.New("empty password")
	}
	enc, err := cipher.EncryptEncode([]byte(password))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), enc)
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	if core.Gateway.JWTSecret == "" {
		return errors.New("gateway.jwt_secret is not set in .core.json")
	}
	signed, err := sec.GenerateHMACSignedToken(core.Gateway.Issuer, tokenSub, []byte(core.Gateway.JWTSecret), tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), signed)
	return nil
}
