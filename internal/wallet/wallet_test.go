package wallet

import (
	"context"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey     = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	testAddress = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"
)

func TestFromHexAddress(t *testing.T) {
	key, err := FromHex(testKey)
	require.NoError(t, err)

	addr, err := key.Address(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testAddress, addr)
}

func TestFromHexInvalid(t *testing.T) {
	_, err := FromHex("not-a-key")
	require.Error(t, err)
}

func TestSignAndRecover(t *testing.T) {
	key, err := FromHex(testKey)
	require.NoError(t, err)

	sig, err := key.SignMessage(context.Background(), "hello lens")
	require.NoError(t, err)
	require.Len(t, sig, SignatureLength)
	assert.Contains(t, []byte{27, 28}, sig[64])

	got, err := RecoverAddress([]byte("hello lens"), sig)
	require.NoError(t, err)
	assert.True(t, SameAddress(got, strings.ToLower(testAddress)))

	other, err := RecoverAddress([]byte("hello warpcast"), sig)
	require.NoError(t, err)
	assert.False(t, SameAddress(other, testAddress))
}

func TestSignMessageIsPersonalSign(t *testing.T) {
	// Known personal_sign digest of "Hello World".
	assert.Equal(t, "0xa1de988600a42c4b4ab089b619297c17d53cffae5d5120d82d8a92d0bb3b78f2",
		hexutil.Encode(accounts.TextHash([]byte("Hello World"))))

	key, err := FromHex(testKey)
	require.NoError(t, err)
	sig, err := key.SignMessage(context.Background(), "Hello World")
	require.NoError(t, err)

	raw := append([]byte(nil), sig...)
	raw[64] -= 27
	pub, err := ethcrypto.SigToPub(accounts.TextHash([]byte("Hello World")), raw)
	require.NoError(t, err)
	assert.Equal(t, testAddress, ethcrypto.PubkeyToAddress(*pub).Hex())
}

func TestRecoverAddressRejectsBadInput(t *testing.T) {
	_, err := RecoverAddress([]byte("x"), make([]byte, 10))
	assert.ErrorIs(t, err, ErrInvalidSignatureLength)

	sig := make([]byte, SignatureLength)
	sig[64] = 5
	_, err = RecoverAddress([]byte("x"), sig)
	assert.ErrorIs(t, err, ErrInvalidRecoveryID)
}

func TestSignMessageHonorsContext(t *testing.T) {
	key, err := Generate()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = key.SignMessage(ctx, "late")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSameAddress(t *testing.T) {
	assert.True(t, SameAddress(testAddress, strings.ToUpper(testAddress[:2])+strings.ToUpper(testAddress[2:])))
	assert.False(t, SameAddress(testAddress, "0x0000000000000000000000000000000000000000"))
	assert.False(t, SameAddress(testAddress, "garbage"))
}
