// Package gateway abstracts the blockchain the engine mints to. The engine
// only ever submits transactions, polls their status and re-checks
// ownership; workflow code never sees chain-specific types.
package gateway

import (
	"context"

	"github.com/quizmint/qm-engine/internal/domain"
)

// TxReceipt is the gateway's view of a submitted transaction
type TxReceipt struct {
	// Status is pending until the transaction is mined
	Status domain.TxStatus
	// TokenRef is the minted asset reference, set on confirmed mints
	TokenRef string
}

// Gateway defines the interface to the minting chain.
//
//go:generate mockgen -source=gateway.go -destination=../../mocks/gateway.go -package=mocks -mock_names=Gateway=MockGateway
type Gateway interface {
	// SubmitMint submits a mint of the pinned content to the recipient and
	// returns an opaque transaction reference
	SubmitMint(ctx context.Context, recipient, contentID string) (string, error)

	// SubmitBurn submits a burn of the given token refs
	SubmitBurn(ctx context.Context, tokenRefs []string) (string, error)

	// TxStatus reports the current state of a submitted transaction.
	// Pending is not an error; callers poll.
	TxStatus(ctx context.Context, txRef string) (*TxReceipt, error)

	// OwnerOf returns the current owner of a token ref
	OwnerOf(ctx context.Context, tokenRef string) (string, error)

	// Close closes the connection
	Close()
}
