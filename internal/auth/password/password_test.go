package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	digest, err := Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}
	if digest == "correct horse battery staple" {
		t.Fatal("digest must not equal the plaintext")
	}
	if !Verify("correct horse battery staple", digest) {
		t.Fatal("expected verification to succeed")
	}
	if Verify("wrong password", digest) {
		t.Fatal("expected verification to fail for wrong password")
	}
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("same-password")
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}
	second, err := Hash("same-password")
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct digests for the same plaintext")
	}
}

func TestVerifyMalformedDigest(t *testing.T) {
	if Verify("anything", "not-a-bcrypt-digest") {
		t.Fatal("expected malformed digest to fail verification")
	}
	if Verify("anything", "") {
		t.Fatal("expected empty digest to fail verification")
	}
}
