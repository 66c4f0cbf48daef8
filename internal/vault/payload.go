package vault

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/skdas20/VaultX/internal/crypto"
)

// The payload is the canonical cleartext encoding of the vault, produced
// immediately before encryption. encoding/json writes map keys in
// lexicographic order, so serializing the same logical state twice yields
// identical bytes. Binary fields are standard padded base64 ([]byte's
// native JSON encoding); a missing expiry is an explicit null.

type secretPayload struct {
	Key            string `json:"key"`
	EncryptedValue []byte `json:"encrypted_value"`
	Nonce          []byte `json:"nonce"`
	CreatedAt      int64  `json:"created_at"`
	ExpiresAt      *int64 `json:"expires_at"`
}

type projectPayload struct {
	Name      string                    `json:"name"`
	Secrets   map[string]*secretPayload `json:"secrets"`
	CreatedAt int64                     `json:"created_at"`
}

type identityPayload struct {
	Name                string `json:"name"`
	PublicKey           string `json:"public_key"`
	EncryptedPrivateKey []byte `json:"encrypted_private_key"`
	Nonce               []byte `json:"nonce"`
	CreatedAt           int64  `json:"created_at"`
}

type serverPayload struct {
	Name         string `json:"name"`
	Username     string `json:"username"`
	Host         string `json:"host"`
	IdentityName string `json:"identity_name"`
	CreatedAt    int64  `json:"created_at"`
}

type vaultPayload struct {
	Version       int64                       `json:"version"`
	Projects      map[string]*projectPayload  `json:"projects"`
	SSHIdentities map[string]*identityPayload `json:"ssh_identities"`
	SSHServers    map[string]*serverPayload   `json:"ssh_servers"`
}

// Marshal serializes the vault to its canonical text representation.
func Marshal(v *Vault) ([]byte, error) {
	p := &vaultPayload{
		Version:       v.Version,
		Projects:      make(map[string]*projectPayload, len(v.Projects)),
		SSHIdentities: make(map[string]*identityPayload, len(v.SSHIdentities)),
		SSHServers:    make(map[string]*serverPayload, len(v.SSHServers)),
	}

	for name, proj := range v.Projects {
		pp := &projectPayload{
			Name:      proj.Name,
			Secrets:   make(map[string]*secretPayload, len(proj.Secrets)),
			CreatedAt: proj.CreatedAt,
		}
		for key, secret := range proj.Secrets {
			pp.Secrets[key] = &secretPayload{
				Key:            secret.Key,
				EncryptedValue: secret.EncryptedValue,
				Nonce:          secret.Nonce,
				CreatedAt:      secret.CreatedAt,
				ExpiresAt:      secret.ExpiresAt,
			}
		}
		p.Projects[name] = pp
	}

	for name, identity := range v.SSHIdentities {
		p.SSHIdentities[name] = &identityPayload{
			Name:                identity.Name,
			PublicKey:           identity.PublicKey,
			EncryptedPrivateKey: identity.EncryptedPrivateKey,
			Nonce:               identity.Nonce,
			CreatedAt:           identity.CreatedAt,
		}
	}

	for name, server := range v.SSHServers {
		p.SSHServers[name] = &serverPayload{
			Name:         server.Name,
			Username:     server.Username,
			Host:         server.Host,
			IdentityName: server.IdentityName,
			CreatedAt:    server.CreatedAt,
		}
	}

	return json.Marshal(p)
}

// Unmarshal reconstructs a vault from its canonical text representation.
// Unknown fields fail with ErrUnsupportedPayload so a downgrade cannot
// silently drop data written by a newer version.
func Unmarshal(data []byte) (*Vault, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var p vaultPayload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedPayload, err)
	}

	v := &Vault{
		Version:       p.Version,
		Projects:      make(map[string]*Project, len(p.Projects)),
		SSHIdentities: make(map[string]*SSHIdentity, len(p.SSHIdentities)),
		SSHServers:    make(map[string]*SSHServer, len(p.SSHServers)),
	}

	for name, pp := range p.Projects {
		proj := &Project{
			Name:      pp.Name,
			Secrets:   make(map[string]*Secret, len(pp.Secrets)),
			CreatedAt: pp.CreatedAt,
		}
		for key, sp := range pp.Secrets {
			if sp.Key != key {
				return nil, fmt.Errorf("%w: secret key %q does not match map key %q", ErrUnsupportedPayload, sp.Key, key)
			}
			if len(sp.Nonce) != crypto.NonceSize {
				return nil, fmt.Errorf("%w: bad nonce length for secret %q", ErrUnsupportedPayload, key)
			}
			proj.Secrets[key] = &Secret{
				Key:            sp.Key,
				EncryptedValue: sp.EncryptedValue,
				Nonce:          sp.Nonce,
				CreatedAt:      sp.CreatedAt,
				ExpiresAt:      sp.ExpiresAt,
			}
		}
		v.Projects[name] = proj
	}

	for name, ip := range p.SSHIdentities {
		if len(ip.Nonce) != crypto.NonceSize {
			return nil, fmt.Errorf("%w: bad nonce length for identity %q", ErrUnsupportedPayload, name)
		}
		v.SSHIdentities[name] = &SSHIdentity{
			Name:                ip.Name,
			PublicKey:           ip.PublicKey,
			EncryptedPrivateKey: ip.EncryptedPrivateKey,
			Nonce:               ip.Nonce,
			CreatedAt:           ip.CreatedAt,
		}
	}

	for name, sp := range p.SSHServers {
		v.SSHServers[name] = &SSHServer{
			Name:         sp.Name,
			Username:     sp.Username,
			Host:         sp.Host,
			IdentityName: sp.IdentityName,
			CreatedAt:    sp.CreatedAt,
		}
	}

	return v, nil
}
