// Command relay-keygen generates or recovers an agent identity and
// writes it to an identity directory, mirroring the on-disk layout
// SPEC_FULL.md §6 names.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/sage-x-project/sage-relay/identity"
)

func main() {
	dir := flag.String("dir", ".", "identity directory (keys/ is created under it)")
	mnemonic := flag.String("recover", "", "recover from an existing 12-word mnemonic instead of generating one")
	flag.Parse()

	var id *identity.Identity
	var err error

	if *mnemonic != "" {
		id, err = identity.Recover(*mnemonic)
		if err != nil {
			log.Fatalf("recover: %v", err)
		}
	} else {
		id, err = identity.Generate()
		if err != nil {
			log.Fatalf("generate: %v", err)
		}
	}

	if err := identity.Save(id, *dir); err != nil {
		log.Fatalf("save: %v", err)
	}

	fmt.Println("address:", id.Address)
	fmt.Println("short:  ", id.ShortAddress())
	if id.Mnemonic != "" {
		fmt.Println("mnemonic (write this down, it will not be shown again):")
		fmt.Println(" ", id.Mnemonic)
	}
	fmt.Println("keys written under:", *dir, "/keys")
}
