// croptoken mints signed caller tokens for the CropCert API. There is no
// user store; operators hand tokens to farms, co-ops, and auditors out of
// band.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cropcert/cropcert/internal/auth"
	"github.com/spf13/pflag"
)

func main() {
	identity := pflag.String("identity", "", "Caller identity to embed in the token")
	secret := pflag.String("secret", "", "JWT signing secret (defaults to CROPCERT_JWT_SECRET)")
	issuer := pflag.String("issuer", "cropcert", "Token issuer")
	expiration := pflag.Duration("expiration", 24*time.Hour, "Token lifetime")
	pflag.Parse()

	if *identity == "" {
		fmt.Fprintln(os.Stderr, "croptoken: --identity is required")
		pflag.Usage()
		os.Exit(2)
	}

	signingSecret := *secret
	if signingSecret == "" {
		signingSecret = os.Getenv("CROPCERT_JWT_SECRET")
	}
	if signingSecret == "" {
		log.Fatal("croptoken: no signing secret (use --secret or CROPCERT_JWT_SECRET)")
	}

	token, err := auth.GenerateToken(*identity, signingSecret, *issuer, *expiration)
	if err != nil {
		log.Fatalf("croptoken: failed to generate token: %v", err)
	}

	fmt.Println(token)
}
