// Command gensecret prints a random hex key suitable for SECRET_KEY,
// which signs both the access tokens and the email link tokens.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

const keyLen = 32

func main() {
	key := make([]byte, keyLen)

	if _, err := rand.Read(key); err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hex.EncodeToString(key))
}
