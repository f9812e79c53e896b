package secrets

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"

	"filippo.io/age"
	"filippo.io/age/agessh"
	"filippo.io/age/armor"
	"github.com/atotto/clipboard"
	"github.com/rotisserie/eris"
	"golang.org/x/crypto/ssh"
)

const (
	armorHeader = "-----BEGIN AGE ENCRYPTED FILE-----"
	armorFooter = "-----END AGE ENCRYPTED FILE-----"
)

var ErrPassphraseRequired = errors.New("ssh key is passphrase protected, please provide passphrase")

// IsArmored reports whether text holds an armored age file.
func IsArmored(text string) bool {
	return strings.Contains(text, armorHeader) && strings.Contains(text, armorFooter)
}

// TokenFromClipboard checks if the clipboard contains a sealed auth token
func TokenFromClipboard() (string, bool) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", false
	}
	if IsArmored(text) {
		return text, true
	}
	return "", false
}

// ReadSealedFile reads an armored age file from disk.
func ReadSealedFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "failed to read sealed token file %s", path)
	}
	if !IsArmored(string(data)) {
		return "", eris.Errorf("%s is not an armored age file", path)
	}
	return string(data), nil
}

// LoadIdentities reads an age identity file or an SSH private key. For
// passphrase protected SSH keys passphrase is called when the key is first
// needed; a nil passphrase makes such keys fail with ErrPassphraseRequired.
func LoadIdentities(path string, passphrase func() ([]byte, error)) ([]age.Identity, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "failed to read private key file")
	}

	if bytes.Contains(keyData, []byte("AGE-SECRET-KEY-")) {
		ids, err := age.ParseIdentities(bytes.NewReader(keyData))
		if err != nil {
			return nil, eris.Wrap(err, "failed to parse age identity file")
		}
		return ids, nil
	}

	id, err := agessh.ParseIdentity(keyData)
	if err == nil {
		return []age.Identity{id}, nil
	}

	var missing *ssh.PassphraseMissingError
	if !errors.As(err, &missing) {
		return nil, eris.Wrap(err, "failed to parse SSH key")
	}
	if passphrase == nil {
		return nil, ErrPassphraseRequired
	}

	pubKey := missing.PublicKey
	if pubKey == nil {
		pubKey, err = readPublicKey(path + ".pub")
		if err != nil {
			return nil, err
		}
	}
	encrypted, err := agessh.NewEncryptedSSHIdentity(pubKey, keyData, passphrase)
	if err != nil {
		return nil, eris.Wrap(err, "failed to load encrypted SSH key")
	}
	return []age.Identity{encrypted}, nil
}

func readPublicKey(path string) (ssh.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "encrypted key needs its public key at %s", path)
	}
	pubKey, _, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to parse public key %s", path)
	}
	return pubKey, nil
}

// Open decrypts an armored age file and returns its trimmed content.
func Open(armored string, identities ...age.Identity) (string, error) {
	r, err := age.Decrypt(armor.NewReader(strings.NewReader(armored)), identities...)
	if err != nil {
		return "", eris.Wrap(err, "failed to decrypt")
	}
	decrypted, err := io.ReadAll(r)
	if err != nil {
		return "", eris.Wrap(err, "failed to read decrypted content")
	}
	return strings.TrimSpace(string(decrypted)), nil
}

// Seal encrypts plaintext to each recipient. Recipients are age public keys
// ("age1...") or SSH public keys in authorized_keys format.
func Seal(plaintext string, recipientKeys []string) (string, error) {
	if len(recipientKeys) == 0 {
		return "", eris.New("at least one recipient is required")
	}

	var recipients []age.Recipient
	for _, key := range recipientKeys {
		key = strings.TrimSpace(key)
		var rec age.Recipient
		var err error
		if strings.HasPrefix(key, "age1") {
			rec, err = age.ParseX25519Recipient(key)
		} else {
			rec, err = agessh.ParseRecipient(key)
		}
		if err != nil {
			return "", eris.Wrapf(err, "failed to parse recipient %q", key)
		}
		recipients = append(recipients, rec)
	}

	var buf bytes.Buffer
	armorWriter := armor.NewWriter(&buf)

	w, err := age.Encrypt(armorWriter, recipients...)
	if err != nil {
		return "", eris.Wrap(err, "failed to encrypt")
	}
	if _, err := w.Write([]byte(plaintext)); err != nil {
		return "", eris.Wrap(err, "failed to encrypt")
	}
	if err := w.Close(); err != nil {
		return "", eris.Wrap(err, "failed to encrypt")
	}
	if err := armorWriter.Close(); err != nil {
		return "", eris.Wrap(err, "failed to encrypt")
	}

	return buf.String(), nil
}
