// Command hash-password prints a bcrypt hash for EXCLUSIVE_PASSWORD_HASH.
package main

import (
	"fmt"
	"os"

	"github.com/sendai-ikuei-track/site-server/internal/util"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: go run scripts/hash-password.go <password>\n")
		fmt.Fprintf(os.Stderr, "Set the output as EXCLUSIVE_PASSWORD_HASH.\n")
		os.Exit(1)
	}

	hash, err := util.HashPassword(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
