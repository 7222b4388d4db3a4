// Package wallet implements the signer boundary with a local secp256k1 key
// and the EIP-191 personal message conventions shared by signing and recovery.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the size of an r || s || v signature.
const SignatureLength = 65

var (
	// ErrInvalidSignatureLength is returned for signatures that are not 65 bytes.
	ErrInvalidSignatureLength = errors.New("invalid signature length")
	// ErrInvalidRecoveryID is returned when v is not one of 0, 1, 27, 28.
	ErrInvalidRecoveryID = errors.New("invalid signature recovery id")
)

// RecoverAddress returns the checksummed address that produced sig over message.
func RecoverAddress(message []byte, sig []byte) (string, error) {
	if len(sig) != SignatureLength {
		return "", ErrInvalidSignatureLength
	}
	normalized := append([]byte(nil), sig...)
	switch normalized[64] {
	case 0, 1:
	case 27, 28:
		normalized[64] -= 27
	default:
		return "", ErrInvalidRecoveryID
	}

	pub, err := ethcrypto.SigToPub(accounts.TextHash(message), normalized)
	if err != nil {
		return "", fmt.Errorf("signature recovery failed: %w", err)
	}
	return ethcrypto.PubkeyToAddress(*pub).Hex(), nil
}

// SameAddress compares two hex addresses case-insensitively.
func SameAddress(a, b string) bool {
	if !common.IsHexAddress(a) || !common.IsHexAddress(b) {
		return false
	}
	return common.HexToAddress(a) == common.HexToAddress(b)
}

// Key is a wallet backed by an in-memory private key.
type Key struct {
	priv    *ecdsa.PrivateKey
	address common.Address
}

// FromHex parses a hex private key, with or without the 0x prefix.
func FromHex(hexKey string) (*Key, error) {
	hexKey = strings.TrimSpace(hexKey)
	hexKey = strings.TrimPrefix(strings.TrimPrefix(hexKey, "0x"), "0X")
	priv, err := ethcrypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return newKey(priv), nil
}

// Generate creates a wallet with a random key.
func Generate() (*Key, error) {
	priv, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return newKey(priv), nil
}

func newKey(priv *ecdsa.PrivateKey) *Key {
	return &Key{priv: priv, address: ethcrypto.PubkeyToAddress(priv.PublicKey)}
}

// Address returns the checksummed wallet address.
func (k *Key) Address(ctx context.Context) (string, error) {
	return k.address.Hex(), nil
}

// SignMessage signs message as an EIP-191 personal message. The recovery id
// uses the 27/28 form wallets emit.
func (k *Key) SignMessage(ctx context.Context, message string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sig, err := ethcrypto.Sign(accounts.TextHash([]byte(message)), k.priv)
	if err != nil {
		return nil, fmt.Errorf("sign message: %w", err)
	}
	sig[64] += 27
	return sig, nil
}
