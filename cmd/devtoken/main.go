package main

import (
	"fmt"
	"os"
	"time"

	"github.com/udaykumar0515/speakup-gateway/internal/credential"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run cmd/devtoken/main.go <service-account.json> <uid>")
		fmt.Println("Mints a signed custom sign-in token for uid, for exchanging against")
		fmt.Println("the Identity Toolkit emulator or a test project.")
		os.Exit(1)
	}

	account, err := credential.LoadServiceAccount(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "devtoken: %v\n", err)
		os.Exit(1)
	}

	uid := os.Args[2]
	token, err := account.CustomToken(uid, time.Hour)
	if err != nil {
		fmt.Fprintf(os.Stderr, "devtoken: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Custom token for uid %s (valid 1h):\n\n%s\n", uid, token)
	fmt.Println("\nExchange it for an ID token the gateway accepts:")
	fmt.Println("  curl -s 'https://identitytoolkit.googleapis.com/v1/accounts:signInWithCustomToken?key=<api-key>' \\")
	fmt.Println("    -H 'Content-Type: application/json' \\")
	fmt.Println("    -d '{\"token\": \"<custom-token>\", \"returnSecureToken\": true}'")
}
