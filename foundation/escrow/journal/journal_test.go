package journal_test

import (
	"testing"

	"github.com/ardanlabs/escrow/foundation/escrow/account"
	"github.com/ardanlabs/escrow/foundation/escrow/journal"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"

func TestSignedTx(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	t.Log("Given the need to accept signed transactions.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen signing a delegate transaction.", testID)
		{
			tx := journal.Tx{
				ChainID: 1,
				Nonce:   1,
				Op:      journal.OpDelegate,
				Account: account.MustAccount("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"),
			}

			signedTx, err := tx.Sign(pk)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to sign the transaction: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to sign the transaction.", success, testID)

			from, err := signedTx.Validate(1)
			if err != nil || from != account.PublicKeyToAccount(pk.PublicKey) {
				t.Fatalf("\t%s\tTest %d:\tShould recover the signer: %s %v", failed, testID, from, err)
			}
			t.Logf("\t%s\tTest %d:\tShould recover the signer.", success, testID)

			if _, err := signedTx.Validate(2); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject another chain id.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject another chain id.", success, testID)

			signedTx.Nonce = 2
			from, err = signedTx.Validate(1)
			if err == nil && from == account.PublicKeyToAccount(pk.PublicKey) {
				t.Fatalf("\t%s\tTest %d:\tShould not recover the signer of a modified transaction.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not recover the signer of a modified transaction.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen signing an unknown operation.", testID)
		{
			if _, err := (journal.Tx{Op: "mint"}).Sign(pk); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject the operation.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the operation.", success, testID)
		}
	}
}
