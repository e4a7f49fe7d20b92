package signature_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ardanlabs/gossipchain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"

// =============================================================================

func Test_Digest(t *testing.T) {
	const abc = "0xba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

	t.Log("Given the need to digest a set of byte spans.")
	{
		h := signature.Hex(signature.Digest([]byte("abc")))
		if h != abc {
			t.Logf("\t%s\tgot: %s", failed, h)
			t.Logf("\t%s\texp: %s", failed, abc)
			t.Fatalf("\t%s\tShould get back the known SHA-256 value.", failed)
		}
		t.Logf("\t%s\tShould get back the known SHA-256 value.", success)

		h = signature.Hex(signature.Digest([]byte("a"), []byte("b"), nil, []byte("c")))
		if h != abc {
			t.Logf("\t%s\tgot: %s", failed, h)
			t.Logf("\t%s\texp: %s", failed, abc)
			t.Fatalf("\t%s\tShould hash the concatenation of all spans.", failed)
		}
		t.Logf("\t%s\tShould hash the concatenation of all spans.", success)
	}
}

func Test_Signing(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}
	privateKey := crypto.FromECDSA(pk)

	publicKey, err := signature.PublicKey(privateKey)
	if err != nil {
		t.Fatalf("Should be able to derive the public key: %s", err)
	}

	data := []byte("Lorem Ipsum")

	sig, err := signature.Sign(data, privateKey)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	if err := signature.Verify(data, sig, publicKey); err != nil {
		t.Fatalf("Should be able to verify the signature: %s", err)
	}

	sig2, err := signature.Sign(data, privateKey)
	if err != nil {
		t.Fatalf("Should be able to sign data twice: %s", err)
	}

	if !bytes.Equal(sig, sig2) {
		t.Logf("got: %s", signature.Hex(sig2))
		t.Logf("exp: %s", signature.Hex(sig))
		t.Fatalf("Should get back a deterministic signature.")
	}
}

func Test_VerifyFailures(t *testing.T) {
	privateKey, publicKey, err := signature.GenerateKeyPair()
	if err != nil {
		t.Fatalf("Should be able to generate a key pair: %s", err)
	}

	_, otherPublicKey, err := signature.GenerateKeyPair()
	if err != nil {
		t.Fatalf("Should be able to generate a second key pair: %s", err)
	}

	data := []byte("Lorem Ipsum")
	sig, err := signature.Sign(data, privateKey)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	type table struct {
		name      string
		data      []byte
		sig       []byte
		publicKey []byte
	}

	tt := []table{
		{name: "tampered-data", data: []byte("Fake text!!!"), sig: sig, publicKey: publicKey},
		{name: "wrong-key", data: data, sig: sig, publicKey: otherPublicKey},
		{name: "malformed-key", data: data, sig: sig, publicKey: []byte{1, 2, 3}},
		{name: "short-signature", data: data, sig: sig[:64], publicKey: publicKey},
		{name: "bad-recovery-id", data: data, sig: append(append([]byte{}, sig[:64]...), 9), publicKey: publicKey},
	}

	t.Log("Given the need to reject signatures that can't be trusted.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				err := signature.Verify(tst.data, tst.sig, tst.publicKey)
				if !errors.Is(err, signature.ErrVerification) {
					t.Fatalf("\t%s\tTest %d:\tShould fail verification: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould fail verification.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_SignBadKey(t *testing.T) {
	_, err := signature.Sign([]byte("data"), []byte{0})
	if !errors.Is(err, signature.ErrSigning) {
		t.Fatalf("Should get a signing error for an undecodable key: %v", err)
	}
}
