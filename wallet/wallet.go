// Package wallet manages backend wallets on a remote wallet engine.
//
// The engine is reached through a Backend. HTTPBackend talks to the engine's
// REST API with an httpclient.Client; Service adds label validation and
// error logging on top of any Backend.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	svc := wallet.NewFromConfig(cfg)
//
//	w, err := svc.CreateWallet(ctx, "USER_ID")
//	wallets, err := svc.ListWallets(ctx)
package wallet

import (
	"context"
	"errors"

	json "github.com/goccy/go-json"
)

// WalletType is the key management scheme of a backend wallet.
type WalletType string

// Wallet types accepted by the engine.
const (
	TypeLocal      WalletType = "local"
	TypeAWSKMS     WalletType = "aws-kms"
	TypeGCPKMS     WalletType = "gcp-kms"
	TypeSmartLocal WalletType = "smart:local"
)

// ErrEmptyLabel is returned when a wallet is created without a label.
var ErrEmptyLabel = errors.New("wallet label must not be empty")

// Backend is the capability set the service needs from a wallet engine.
type Backend interface {
	// CreateWallet creates a wallet named label.
	CreateWallet(ctx context.Context, label string) (*Wallet, error)

	// ListWallets returns every wallet known to the engine. Order is
	// whatever the engine returns.
	ListWallets(ctx context.Context) ([]Wallet, error)
}

// Wallet is a backend wallet record.
type Wallet struct {
	Address string     `json:"address"`
	Label   string     `json:"label,omitempty"`
	Type    WalletType `json:"type,omitempty"`

	// Raw is the record exactly as the engine sent it, including fields
	// this package does not model.
	Raw json.RawMessage `json:"-"`
}

// walletFields is the decoding view of a wallet record. The create endpoint
// names the address "walletAddress", the list endpoint "address".
type walletFields struct {
	Address       string     `json:"address"`
	WalletAddress string     `json:"walletAddress"`
	Label         string     `json:"label"`
	Type          WalletType `json:"type"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (w *Wallet) UnmarshalJSON(data []byte) error {
	var f walletFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}

	w.Address = f.Address
	if w.Address == "" {
		w.Address = f.WalletAddress
	}
	w.Label = f.Label
	w.Type = f.Type
	w.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON implements json.Marshaler. A decoded wallet is written back
// as received, with Address, Label and Type laid over it when set.
func (w Wallet) MarshalJSON() ([]byte, error) {
	type plain Wallet

	var fields map[string]json.RawMessage
	if len(w.Raw) == 0 || json.Unmarshal(w.Raw, &fields) != nil || fields == nil {
		return json.Marshal(plain(w))
	}

	for key, value := range map[string]string{
		"address": w.Address,
		"label":   w.Label,
		"type":    string(w.Type),
	} {
		if value != "" {
			fields[key], _ = json.Marshal(value)
		}
	}
	return json.Marshal(fields)
}
