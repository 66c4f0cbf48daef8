package crypto

// Zero overwrites a byte slice in memory with zeros. Every buffer that held
// a passphrase, a derived key, decrypted plaintext, or a private key is
// passed through here before release.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
