package vault

import (
	"bytes"
	"errors"
	"testing"

	"github.com/skdas20/VaultX/internal/crypto"
	"github.com/skdas20/VaultX/internal/validation"
)

func testMasterKey(t *testing.T) []byte {
	t.Helper()
	salt, err := crypto.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt: %v", err)
	}
	key, err := crypto.DeriveKey([]byte("model-test-pw"), salt)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	return key
}

func TestNew_Empty(t *testing.T) {
	v := New()
	if v.Version != FormatVersion {
		t.Fatalf("version = %d, want %d", v.Version, FormatVersion)
	}
	if len(v.Projects) != 0 || len(v.SSHIdentities) != 0 || len(v.SSHServers) != 0 {
		t.Fatal("new vault is not empty")
	}
}

func TestInitProject(t *testing.T) {
	v := New()
	if err := v.InitProject("my-project", 100); err != nil {
		t.Fatalf("InitProject: %v", err)
	}

	proj, ok := v.Projects["my-project"]
	if !ok {
		t.Fatal("project not stored")
	}
	if proj.Name != "my-project" || proj.CreatedAt != 100 {
		t.Fatalf("project fields wrong: %+v", proj)
	}
}

func TestInitProject_Duplicate(t *testing.T) {
	v := New()
	if err := v.InitProject("p", 0); err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	if err := v.InitProject("p", 0); !errors.Is(err, ErrProjectExists) {
		t.Fatalf("expected ErrProjectExists, got %v", err)
	}
}

func TestInitProject_InvalidName(t *testing.T) {
	v := New()
	for _, name := range []string{"", "bad name", "slash/y"} {
		if err := v.InitProject(name, 0); !errors.Is(err, validation.ErrInvalidName) {
			t.Fatalf("InitProject(%q): expected ErrInvalidName, got %v", name, err)
		}
	}
}

func TestAddGetSecret_RoundTrip(t *testing.T) {
	v := New()
	key := testMasterKey(t)
	if err := v.InitProject("test", 0); err != nil {
		t.Fatalf("InitProject: %v", err)
	}

	value := []byte("my-secret-value")
	if err := v.AddSecret("test", "DB_PASSWORD", value, key, nil, 50); err != nil {
		t.Fatalf("AddSecret: %v", err)
	}

	got, err := v.GetSecret("test", "DB_PASSWORD", key)
	if err != nil {
		t.Fatalf("GetSecret: %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Fatalf("round-trip mismatch: got %q", got)
	}

	secret := v.Projects["test"].Secrets["DB_PASSWORD"]
	if secret.Key != "DB_PASSWORD" || secret.CreatedAt != 50 || secret.ExpiresAt != nil {
		t.Fatalf("secret fields wrong: %+v", secret)
	}
	if bytes.Contains(secret.EncryptedValue, value) {
		t.Fatal("ciphertext contains the plaintext")
	}
}

func TestAddSecret_WithTTL(t *testing.T) {
	v := New()
	key := testMasterKey(t)
	if err := v.InitProject("test", 0); err != nil {
		t.Fatalf("InitProject: %v", err)
	}

	ttl := int64(3600)
	if err := v.AddSecret("test", "TEMP", []byte("x"), key, &ttl, 1000); err != nil {
		t.Fatalf("AddSecret: %v", err)
	}

	secret := v.Projects["test"].Secrets["TEMP"]
	if secret.ExpiresAt == nil || *secret.ExpiresAt != 4600 {
		t.Fatalf("expires_at wrong: %+v", secret.ExpiresAt)
	}
}

func TestAddSecret_MissingProject_Vault(t *testing.T) {
	v := New()
	key := testMasterKey(t)
	if err := v.AddSecret("nope", "K", []byte("x"), key, nil, 0); !errors.Is(err, ErrProjectMissing) {
		t.Fatalf("expected ErrProjectMissing, got %v", err)
	}
}

func TestAddSecret_OverwriteZeroizesOld(t *testing.T) {
	v := New()
	key := testMasterKey(t)
	if err := v.InitProject("test", 0); err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	if err := v.AddSecret("test", "K", []byte("old"), key, nil, 0); err != nil {
		t.Fatalf("AddSecret: %v", err)
	}

	oldBlob := v.Projects["test"].Secrets["K"].EncryptedValue
	oldNonce := v.Projects["test"].Secrets["K"].Nonce

	if err := v.AddSecret("test", "K", []byte("new"), key, nil, 1); err != nil {
		t.Fatalf("AddSecret overwrite: %v", err)
	}

	if !bytes.Equal(oldBlob, make([]byte, len(oldBlob))) {
		t.Fatal("replaced ciphertext was not zeroized")
	}
	if !bytes.Equal(oldNonce, make([]byte, len(oldNonce))) {
		t.Fatal("replaced nonce was not zeroized")
	}

	got, err := v.GetSecret("test", "K", key)
	if err != nil {
		t.Fatalf("GetSecret: %v", err)
	}
	if string(got) != "new" {
		t.Fatalf("got %q after overwrite", got)
	}
}

func TestGetSecret_Missing_Vault(t *testing.T) {
	v := New()
	key := testMasterKey(t)

	if _, err := v.GetSecret("nope", "K", key); !errors.Is(err, ErrProjectMissing) {
		t.Fatalf("expected ErrProjectMissing, got %v", err)
	}

	if err := v.InitProject("p", 0); err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	if _, err := v.GetSecret("p", "K", key); !errors.Is(err, ErrSecretMissing) {
		t.Fatalf("expected ErrSecretMissing, got %v", err)
	}
}

func TestRemoveSecret_Zeroizes(t *testing.T) {
	v := New()
	key := testMasterKey(t)
	if err := v.InitProject("p", 0); err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	if err := v.AddSecret("p", "K", []byte("v"), key, nil, 0); err != nil {
		t.Fatalf("AddSecret: %v", err)
	}

	blob := v.Projects["p"].Secrets["K"].EncryptedValue
	if err := v.RemoveSecret("p", "K"); err != nil {
		t.Fatalf("RemoveSecret: %v", err)
	}

	if !bytes.Equal(blob, make([]byte, len(blob))) {
		t.Fatal("removed ciphertext was not zeroized")
	}
	if _, ok := v.Projects["p"].Secrets["K"]; ok {
		t.Fatal("secret still present")
	}

	if err := v.RemoveSecret("p", "K"); !errors.Is(err, ErrSecretMissing) {
		t.Fatalf("expected ErrSecretMissing, got %v", err)
	}
}

func TestRemoveProject(t *testing.T) {
	v := New()
	key := testMasterKey(t)
	if err := v.InitProject("p", 0); err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	if err := v.AddSecret("p", "K", []byte("v"), key, nil, 0); err != nil {
		t.Fatalf("AddSecret: %v", err)
	}

	if err := v.RemoveProject("p"); err != nil {
		t.Fatalf("RemoveProject: %v", err)
	}
	if _, ok := v.Projects["p"]; ok {
		t.Fatal("project still present")
	}

	if err := v.RemoveProject("p"); !errors.Is(err, ErrProjectMissing) {
		t.Fatalf("expected ErrProjectMissing, got %v", err)
	}
}

func TestSSHIdentity_RoundTrip(t *testing.T) {
	v := New()
	key := testMasterKey(t)

	seed := bytes.Repeat([]byte{0x42}, 32)
	if err := v.AddSSHIdentity("srv", "ssh-ed25519 AAAA test", seed, key, 10); err != nil {
		t.Fatalf("AddSSHIdentity: %v", err)
	}

	if err := v.AddSSHIdentity("srv", "ssh-ed25519 BBBB test", seed, key, 11); !errors.Is(err, ErrIdentityExists) {
		t.Fatalf("expected ErrIdentityExists, got %v", err)
	}

	pub, priv, err := v.GetSSHIdentity("srv", key)
	if err != nil {
		t.Fatalf("GetSSHIdentity: %v", err)
	}
	if pub != "ssh-ed25519 AAAA test" {
		t.Fatalf("public key mismatch: %q", pub)
	}
	if !bytes.Equal(priv, seed) {
		t.Fatal("private key mismatch")
	}

	if _, _, err := v.GetSSHIdentity("nope", key); !errors.Is(err, ErrIdentityMissing) {
		t.Fatalf("expected ErrIdentityMissing, got %v", err)
	}
}

func TestSSHServer(t *testing.T) {
	v := New()
	key := testMasterKey(t)

	// Server requires an existing identity.
	if err := v.AddSSHServer("web", "deploy", "10.0.0.1", "missing", 0); !errors.Is(err, ErrIdentityMissing) {
		t.Fatalf("expected ErrIdentityMissing, got %v", err)
	}

	seed := make([]byte, 32)
	if err := v.AddSSHIdentity("web", "ssh-ed25519 AAAA x", seed, key, 0); err != nil {
		t.Fatalf("AddSSHIdentity: %v", err)
	}
	if err := v.AddSSHServer("web", "deploy", "10.0.0.1", "web", 5); err != nil {
		t.Fatalf("AddSSHServer: %v", err)
	}

	if !v.HasSSHServer("web") {
		t.Fatal("HasSSHServer = false")
	}
	server, err := v.GetSSHServer("web")
	if err != nil {
		t.Fatalf("GetSSHServer: %v", err)
	}
	if server.Username != "deploy" || server.Host != "10.0.0.1" || server.IdentityName != "web" {
		t.Fatalf("server fields wrong: %+v", server)
	}

	if _, err := v.GetSSHServer("nope"); !errors.Is(err, ErrServerMissing) {
		t.Fatalf("expected ErrServerMissing, got %v", err)
	}
}

func TestZeroize(t *testing.T) {
	v := New()
	key := testMasterKey(t)
	if err := v.InitProject("p", 0); err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	if err := v.AddSecret("p", "K", []byte("v"), key, nil, 0); err != nil {
		t.Fatalf("AddSecret: %v", err)
	}
	if err := v.AddSSHIdentity("i", "pub", make([]byte, 32), key, 0); err != nil {
		t.Fatalf("AddSSHIdentity: %v", err)
	}

	secretBlob := v.Projects["p"].Secrets["K"].EncryptedValue
	identityBlob := v.SSHIdentities["i"].EncryptedPrivateKey

	v.Zeroize()

	if !bytes.Equal(secretBlob, make([]byte, len(secretBlob))) {
		t.Fatal("secret blob survived Zeroize")
	}
	if !bytes.Equal(identityBlob, make([]byte, len(identityBlob))) {
		t.Fatal("identity blob survived Zeroize")
	}
}
