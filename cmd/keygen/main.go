package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/forgo/manifestor/api/pkg/jwt"
)

func main() {
	privateKeyPath := flag.String("private", "./keys/private.pem", "Where to write the RSA private key")
	publicKeyPath := flag.String("public", "./keys/public.pem", "Where to write the RSA public key")
	force := flag.Bool("force", false, "Overwrite existing keys")
	verify := flag.Bool("verify", true, "Sign and validate a probe token with the new keys")

	flag.Parse()

	if !*force {
		for _, path := range []string{*privateKeyPath, *publicKeyPath} {
			if _, err := os.Stat(path); err == nil {
				fmt.Fprintf(os.Stderr, "%s already exists; pass -force to overwrite\n", path)
				os.Exit(1)
			}
		}
	}

	for _, path := range []string{*privateKeyPath, *publicKeyPath} {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", filepath.Dir(path), err)
			os.Exit(1)
		}
	}

	if err := jwt.GenerateKeyPair(*privateKeyPath, *publicKeyPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating keys: %v\n", err)
		os.Exit(1)
	}

	if *verify {
		if err := probe(*privateKeyPath, *publicKeyPath); err != nil {
			fmt.Fprintf(os.Stderr, "Generated keys failed verification: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("JWT Keys Generated")
	fmt.Println("==================")
	fmt.Printf("Private: %s\n", *privateKeyPath)
	fmt.Printf("Public:  %s\n", *publicKeyPath)
	fmt.Println()
	fmt.Println("Set JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH to these paths.")
}

// probe round-trips a short-lived token through the new key pair
func probe(privateKeyPath, publicKeyPath string) error {
	signer, err := jwt.NewService(jwt.Config{PrivateKeyPath: privateKeyPath, Issuer: "keygen", ExpirationMins: 1})
	if err != nil {
		return err
	}
	token, err := signer.Sign(jwt.Claims{UserID: "account:keygen-probe"})
	if err != nil {
		return err
	}

	validator, err := jwt.NewService(jwt.Config{PublicKeyPath: publicKeyPath, Issuer: "keygen", ExpirationMins: 1})
	if err != nil {
		return err
	}
	claims, err := validator.Validate(token)
	if err != nil {
		return err
	}
	if claims.UserID != "account:keygen-probe" {
		return fmt.Errorf("probe claims mismatch: %q", claims.UserID)
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.After(time.Now().Add(2*time.Minute)) {
		return fmt.Errorf("probe token has unexpected expiry")
	}
	return nil
}
