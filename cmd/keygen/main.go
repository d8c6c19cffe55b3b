// Command keygen prepares claim secrets and caller tokens for operators.
//
//	keygen -secret            print a fresh claim secret and its unlock digest
//	keygen -digest <secret>   print the unlock digest of an existing secret
//	keygen -token <account>   mint a JWT for account, signed with JWT_SECRET
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"mysteries-backend/internal/config"
	"mysteries-backend/internal/models"
	"mysteries-backend/internal/services"
)

func main() {
	newSecret := flag.Bool("secret", false, "generate a claim secret and its digest")
	digestOf := flag.String("digest", "", "print the unlock digest of this secret")
	account := flag.String("token", "", "mint a JWT for this account")
	flag.Parse()

	switch {
	case *newSecret:
		secret, err := models.GenerateSecret()
		if err != nil {
			fail(err)
		}
		fmt.Printf("secret: %s\ndigest: 0x%s\n", secret, hex.EncodeToString(models.SecretDigest(secret)))

	case *digestOf != "":
		fmt.Printf("0x%s\n", hex.EncodeToString(models.SecretDigest(*digestOf)))

	case *account != "":
		if err := godotenv.Load(); err != nil {
			slog.Debug("no .env file found, using environment variables")
		}
		cfg, err := config.Load()
		if err != nil {
			fail(err)
		}
		token, err := services.NewJWTService(cfg).GenerateToken(*account)
		if err != nil {
			fail(err)
		}
		fmt.Println(token)

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "keygen:", err)
	os.Exit(1)
}
