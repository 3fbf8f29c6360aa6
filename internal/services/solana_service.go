// internal/services/solana_service.go
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/memo"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"

	"github.com/desoy/desoy-backend/internal/config"
)

// ChainRecorder writes an attestation to the chain and returns its
// transaction signature.
type ChainRecorder interface {
	SendMemo(ctx context.Context, message string) (string, error)
}

// SolanaService records backend attestations (mints, oracle prices) as memo
// transactions signed by the backend fee payer. When no RPC endpoint is
// configured it degrades to deterministic local signatures so development
// environments work without a validator.
type SolanaService struct {
	cfg      *config.Config
	client   *rpc.Client
	feePayer solana.PrivateKey
}

func NewSolanaService(cfg *config.Config) (*SolanaService, error) {
	s := &SolanaService{cfg: cfg}

	if cfg.Solana.RPCURL == "" {
		logrus.Warn("No Solana RPC URL configured, chain attestations will be simulated")
		return s, nil
	}

	feePayer, err := solana.PrivateKeyFromBase58(cfg.Solana.FeePayerKey)
	if err != nil {
		return nil, fmt.Errorf("invalid fee payer key: %w", err)
	}

	s.client = rpc.New(cfg.Solana.RPCURL)
	s.feePayer = feePayer
	return s, nil
}

func (s *SolanaService) SendMemo(ctx context.Context, message string) (string, error) {
	if s.client == nil {
		return s.simulatedSignature(message), nil
	}

	resp, err := s.client.GetRecentBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("failed to fetch blockhash: %w", err)
	}

	memoInstruction := memo.NewMemoInstruction([]byte(message), s.feePayer.PublicKey()).Build()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{memoInstruction},
		resp.Value.Blockhash,
		solana.TransactionPayer(s.feePayer.PublicKey()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to build memo transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.feePayer.PublicKey()) {
			return &s.feePayer
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign memo transaction: %w", err)
	}

	signature, err := s.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send memo transaction: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"signature": signature.String(),
	}).Debug("Memo transaction sent")

	return signature.String(), nil
}

func (s *SolanaService) simulatedSignature(message string) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", message, time.Now().UnixNano())))
	return "sim_" + hex.EncodeToString(hash[:])
}
