package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/blacktop/xfeed/internal/config"
	"github.com/blacktop/xfeed/internal/social"
	"github.com/blacktop/xfeed/internal/wallet"
	"golang.org/x/term"
)

// promptWallet resolves the signing key on first use, so commands that never
// sign never ask for it.
type promptWallet struct {
	cfg    config.WalletConfig
	prompt func() (string, error)

	once sync.Once
	key  *wallet.Key
	err  error
}

func newPromptWallet(cfg config.WalletConfig) *promptWallet {
	return &promptWallet{cfg: cfg, prompt: readKeyFromTerminal}
}

func (w *promptWallet) load() (*wallet.Key, error) {
	w.once.Do(func() {
		hexKey := w.cfg.PrivateKey
		if hexKey == "" {
			if hexKey, w.err = w.prompt(); w.err != nil {
				w.err = errors.Join(social.ErrNoWalletConnected, w.err)
				return
			}
		}
		w.key, w.err = wallet.FromHex(hexKey)
	})
	return w.key, w.err
}

func (w *promptWallet) Address(ctx context.Context) (string, error) {
	key, err := w.load()
	if err != nil {
		return "", err
	}
	return key.Address(ctx)
}

func (w *promptWallet) SignMessage(ctx context.Context, message string) ([]byte, error) {
	key, err := w.load()
	if err != nil {
		return nil, err
	}
	return key.SignMessage(ctx, message)
}

func readKeyFromTerminal() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", config.MissingConfigError{Section: "wallet", Keys: []string{"private_key"}}
	}
	fmt.Fprint(os.Stderr, "Wallet private key: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read private key: %w", err)
	}
	key := strings.TrimSpace(string(raw))
	if key == "" {
		return "", errors.New("no private key entered")
	}
	return key, nil
}
