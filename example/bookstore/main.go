// Command bookstore is an offline demonstration of assembling and
// signing Postchain transactions end to end: domain structs go in
// through gtvderive, a keystore-backed identity signs the result, and
// the wire bytes come out ready to hand to a transport this module
// does not implement. It sends nothing over the network.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"go.chromia.dev/postchain/crypto/secp256k1"
	"go.chromia.dev/postchain/gtv"
	"go.chromia.dev/postchain/gtvderive"
	"go.chromia.dev/postchain/keystore"
	"go.chromia.dev/postchain/txn"
)

type book struct {
	ISBN   string `gtv:"isbn"`
	Title  string `gtv:"title"`
	Author string `gtv:"author"`
}

type bookReview struct {
	Index        string `gtv:"index"`
	ReviewerName string `gtv:"reviewer_name"`
	Review       string `gtv:"review"`
	Rating       int64  `gtv:"rating"`
}

func run() error {
	dir, err := os.MkdirTemp("", "bookstore-keystore")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	store, err := keystore.Open(dir + "/identities.db")
	if err != nil {
		return err
	}
	defer store.Close()

	librarianKey, err := store.LoadOrCreate("librarian", generator{})
	if err != nil {
		return err
	}
	librarian, err := secp256k1.NewSignerFromPrivateKey(librarianKey)
	if err != nil {
		return err
	}

	blockchainRID, err := hex.DecodeString("58FE4D15AA5BDA450CC8E55F7ED63004AB1D2535A123F860D1643FD4108809E0")
	if err != nil {
		return err
	}

	manager := txn.NewManager(blockchainRID)

	books := []book{
		{ISBN: "ISBN1", Title: "Book1", Author: "Author1"},
		{ISBN: "ISBN2", Title: "Book2", Author: "Author2"},
	}

	ops := make([]gtv.Operation, 0, len(books)+1)
	for _, b := range books {
		op, err := gtvderive.ToOperation("create_book", b)
		if err != nil {
			return err
		}
		ops = append(ops, op)
	}

	review := bookReview{
		Index:        "ISBN1",
		ReviewerName: "Cuong Le",
		Review:       "This is a great book!",
		Rating:       5,
	}
	reviewOp, err := gtvderive.ToOperation("create_book_review", review)
	if err != nil {
		return err
	}
	ops = append(ops, reviewOp)

	tx, err := manager.Make(ops, librarian)
	if err != nil {
		return err
	}

	wire, err := tx.ToBytes()
	if err != nil {
		return err
	}

	fmt.Printf("tx_rid = %s\n", tx.TxRIDHex())
	fmt.Printf("wire bytes = %d\n", len(wire))
	return nil
}

type generator struct{}

func (generator) Generate() ([]byte, error) {
	signer, err := secp256k1.NewSigner()
	if err != nil {
		return nil, err
	}
	return signer.GetPrivateKeyBytes(), nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
