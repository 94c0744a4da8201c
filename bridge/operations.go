package bridge

import (
	"context"
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	"github.com/swapr/bridge-tracker/arbitrum"
	"github.com/swapr/bridge-tracker/entity"
	"github.com/swapr/bridge-tracker/network"
	"github.com/swapr/bridge-tracker/store"
	"github.com/swapr/bridge-tracker/utils"
)

var (
	ErrTokenDataNotFound     = errors.New("Token data not found")
	ErrTokenNotRecognized    = errors.New("Token address not recognized")
	ErrWithdrawTokenNotFound = errors.New("Can't withdraw; token not found")
	ErrCollectReverted       = errors.New("collect transaction reverted")
)

// TransactionSummary is the view of a withdrawal needed to collect it on L1.
type TransactionSummary struct {
	ChainID        network.ChainID `json:"chainId"`
	TxHash         common.Hash     `json:"txHash"`
	AssetName      string          `json:"assetName"`
	AssetAddressL2 *common.Address `json:"assetAddressL2,omitempty"`
	Value          string          `json:"value"`
	BatchNumber    *big.Int        `json:"batchNumber,omitempty"`
	BatchIndex     *big.Int        `json:"batchIndex,omitempty"`
}

func Summarize(txn *entity.BridgeTxn) TransactionSummary {
	summary := TransactionSummary{
		ChainID:        txn.ChainID,
		TxHash:         txn.TxHash,
		AssetName:      txn.AssetName,
		AssetAddressL2: txn.AssetAddressL2,
		Value:          txn.Value,
	}
	if txn.Withdrawal != nil {
		summary.BatchNumber = txn.Withdrawal.BatchNumber
		summary.BatchIndex = txn.Withdrawal.BatchIndex
	}
	return summary
}

// Deposit bridges value from L1 to L2. A nil token deposits ETH.
// Failures end up in the modal status.
func (s *Service) Deposit(ctx context.Context, value string, token *common.Address) {
	var err error
	if token != nil {
		err = s.depositERC20(ctx, *token, value)
	} else {
		err = s.depositETH(ctx, value)
	}
	if err != nil {
		s.fail(ctx, "deposit", err)
	}
}

// Withdraw bridges value from L2 to L1. A nil token withdraws ETH, otherwise
// token is the L2 token address. Failures end up in the modal status.
func (s *Service) Withdraw(ctx context.Context, value string, token *common.Address) {
	var err error
	if token != nil {
		err = s.withdrawERC20(ctx, *token, value)
	} else {
		err = s.withdrawETH(ctx, value)
	}
	if err != nil {
		s.fail(ctx, "withdraw", err)
	}
}

func (s *Service) depositETH(ctx context.Context, value string) error {
	account, ok := s.ready()
	if !ok {
		return nil
	}
	s.store.Dispatch(ctx, store.SetModalStatus{Status: store.ModalStatusPending})

	amount, err := utils.ParseEther(value)
	if err != nil {
		return err
	}
	tx, err := s.bridge.DepositETH(ctx, amount)
	if err != nil {
		return err
	}
	s.submitted(ctx, "deposit", &entity.BridgeTxn{
		ChainID:   s.pair.L1ChainID,
		TxHash:    tx.Hash(),
		Type:      entity.TxnTypeDepositL1,
		AssetName: "ETH",
		AssetType: entity.AssetTypeETH,
		Value:     value,
		Sender:    account,
	})
	return s.awaitDeposit(ctx, tx)
}

func (s *Service) depositERC20(ctx context.Context, l1Token common.Address, value string) error {
	account, ok := s.ready()
	if !ok {
		return nil
	}
	s.store.Dispatch(ctx, store.SetModalStatus{Status: store.ModalStatusPending})

	tokenData, err := s.bridge.L1TokenData(ctx, l1Token)
	if err != nil {
		s.logger.WithError(err).WithField("token", l1Token).Warn("can't obtain l1 token data")
		return ErrTokenDataNotFound
	}
	amount, err := utils.ParseUnits(value, tokenData.Decimals)
	if err != nil {
		return err
	}
	tx, err := s.bridge.DepositERC20(ctx, l1Token, amount)
	if err != nil {
		return err
	}

	txn := &entity.BridgeTxn{
		ChainID:        s.pair.L1ChainID,
		TxHash:         tx.Hash(),
		Type:           entity.TxnTypeDepositL1,
		AssetName:      tokenData.Symbol,
		AssetType:      entity.AssetTypeERC20,
		AssetAddressL1: &l1Token,
		Value:          value,
		Sender:         account,
	}
	if l2Token, err := s.bridge.L2TokenAddress(ctx, l1Token); err != nil {
		s.logger.WithError(err).WithField("token", l1Token).Warn("can't obtain l2 token address")
	} else {
		txn.AssetAddressL2 = &l2Token
	}
	s.submitted(ctx, "deposit", txn)
	return s.awaitDeposit(ctx, tx)
}

func (s *Service) awaitDeposit(ctx context.Context, tx arbitrum.Transaction) error {
	receipt, err := tx.Wait(ctx)
	if err != nil {
		return err
	}
	var seqNum *big.Int
	if seqNums := s.bridge.InboxSeqNums(receipt); len(seqNums) > 0 {
		seqNum = seqNums[0]
	}
	s.store.Dispatch(ctx, store.UpdateReceipt{
		ChainID: s.pair.L1ChainID,
		TxHash:  tx.Hash(),
		Receipt: receipt,
		SeqNum:  seqNum,
	})
	return nil
}

func (s *Service) withdrawETH(ctx context.Context, value string) error {
	account, ok := s.ready()
	if !ok {
		return nil
	}
	s.store.Dispatch(ctx,
		store.SetModalStatus{Status: store.ModalStatusPending},
		store.SetModalData{
			Symbol:      "ETH",
			TypedValue:  value,
			FromChainID: s.pair.L2ChainID,
			ToChainID:   s.pair.L1ChainID,
		},
	)

	amount, err := utils.ParseEther(value)
	if err != nil {
		return err
	}
	tx, err := s.bridge.WithdrawETH(ctx, amount)
	if err != nil {
		return err
	}
	s.submitted(ctx, "withdraw", &entity.BridgeTxn{
		ChainID:   s.pair.L2ChainID,
		TxHash:    tx.Hash(),
		Type:      entity.TxnTypeWithdraw,
		AssetName: "ETH",
		AssetType: entity.AssetTypeETH,
		Value:     value,
		Sender:    account,
	})
	return s.awaitWithdrawal(ctx, tx)
}

func (s *Service) withdrawERC20(ctx context.Context, l2Token common.Address, value string) error {
	account, ok := s.ready()
	if !ok {
		return nil
	}

	l1Token, err := s.bridge.ERC20L1Address(ctx, l2Token)
	if err != nil || l1Token == (common.Address{}) {
		s.logger.WithError(err).WithField("token", l2Token).Warn("can't obtain l1 token address")
		return ErrTokenNotRecognized
	}
	tokenData, err := s.bridge.L1TokenData(ctx, l1Token)
	if err != nil {
		s.logger.WithError(err).WithField("token", l1Token).Warn("can't obtain l1 token data")
		return ErrWithdrawTokenNotFound
	}

	s.store.Dispatch(ctx,
		store.SetModalStatus{Status: store.ModalStatusPending},
		store.SetModalData{
			Symbol:      tokenData.Symbol,
			TypedValue:  value,
			FromChainID: s.pair.L2ChainID,
			ToChainID:   s.pair.L1ChainID,
		},
	)

	amount, err := utils.ParseUnits(value, tokenData.Decimals)
	if err != nil {
		return err
	}
	tx, err := s.bridge.WithdrawERC20(ctx, l1Token, amount)
	if err != nil {
		return err
	}
	s.submitted(ctx, "withdraw", &entity.BridgeTxn{
		ChainID:        s.pair.L2ChainID,
		TxHash:         tx.Hash(),
		Type:           entity.TxnTypeWithdraw,
		AssetName:      tokenData.Symbol,
		AssetType:      entity.AssetTypeERC20,
		AssetAddressL1: &l1Token,
		AssetAddressL2: &l2Token,
		Value:          value,
		Sender:         account,
	})
	return s.awaitWithdrawal(ctx, tx)
}

func (s *Service) awaitWithdrawal(ctx context.Context, tx arbitrum.Transaction) error {
	receipt, err := tx.Wait(ctx)
	if err != nil {
		return err
	}
	s.store.Dispatch(ctx, store.UpdateReceipt{
		ChainID: s.pair.L2ChainID,
		TxHash:  tx.Hash(),
		Receipt: receipt,
	})
	return nil
}

// Collect executes a confirmed withdrawal on L1. Summaries without a batch
// position or value, and withdrawals already executed, are ignored.
func (s *Service) Collect(ctx context.Context, summary TransactionSummary) {
	account, ok := s.ready()
	if !ok || summary.BatchNumber == nil || summary.BatchIndex == nil || summary.Value == "" {
		return
	}
	if txn, exists := s.store.Snapshot().BridgeTxn(s.pair.L2ChainID, summary.TxHash); exists &&
		txn.MessageState() == entity.OutgoingMessageStateExecuted {
		return
	}
	if err := s.collect(ctx, account, summary); err != nil {
		s.fail(ctx, "collect", err)
	}
}

func (s *Service) collect(ctx context.Context, account common.Address, summary TransactionSummary) error {
	s.store.Dispatch(ctx, store.SetModalStatus{Status: store.ModalStatusPending})

	tx, err := s.bridge.TriggerL2ToL1Transaction(ctx, summary.BatchNumber, summary.BatchIndex)
	if err != nil {
		return err
	}

	outbox := &entity.BridgeTxn{
		ChainID:   s.pair.L1ChainID,
		TxHash:    tx.Hash(),
		Type:      entity.TxnTypeOutbox,
		AssetName: "ETH",
		AssetType: entity.AssetTypeETH,
		Value:     summary.Value,
		Sender:    account,
	}
	if summary.AssetAddressL2 != nil {
		outbox.AssetName = summary.AssetName
		outbox.AssetType = entity.AssetTypeERC20
	}
	s.logger.WithFields(logrus.Fields{
		"tx_hash":       tx.Hash(),
		"withdrawal_tx": summary.TxHash,
	}).Info("collecting withdrawal")
	s.store.Dispatch(ctx,
		store.SetModalStatus{Status: store.ModalStatusCollecting},
		store.AddBridgeTxn{Txn: outbox},
		store.UpdatePartnerHash{
			ChainID:        s.pair.L1ChainID,
			TxHash:         tx.Hash(),
			PartnerTxHash:  summary.TxHash,
			PartnerChainID: s.pair.L2ChainID,
		},
		store.UpdatePartnerHash{
			ChainID:        s.pair.L2ChainID,
			TxHash:         summary.TxHash,
			PartnerTxHash:  tx.Hash(),
			PartnerChainID: s.pair.L1ChainID,
		},
	)

	receipt, err := tx.Wait(ctx)
	if err != nil {
		return err
	}
	s.store.Dispatch(ctx, store.UpdateReceipt{
		ChainID: s.pair.L1ChainID,
		TxHash:  tx.Hash(),
		Receipt: receipt,
	})
	if receipt.Status == types.ReceiptStatusFailed {
		return ErrCollectReverted
	}
	OperationResults.WithLabelValues("collect", "ok").Inc()
	s.store.Dispatch(ctx,
		store.SetModalStatus{Status: store.ModalStatusSuccess},
		store.UpdateWithdrawalInfo{
			ChainID:              s.pair.L2ChainID,
			TxHash:               summary.TxHash,
			OutgoingMessageState: entity.OutgoingMessageStateExecuted,
		},
	)
	return nil
}

// ApproveERC20 approves the token gateway to spend l1Token. The gateway and
// symbol are looked up when not given.
func (s *Service) ApproveERC20(ctx context.Context, l1Token common.Address, gateway *common.Address, symbol string) {
	if err := s.approveERC20(ctx, l1Token, gateway, symbol); err != nil {
		s.fail(ctx, "approve", err)
	}
}

func (s *Service) approveERC20(ctx context.Context, l1Token common.Address, gateway *common.Address, symbol string) error {
	account, ok := s.ready()
	if !ok {
		return nil
	}
	s.store.Dispatch(ctx, store.SetModalStatus{Status: store.ModalStatusPending})

	if gateway == nil {
		addr, err := s.bridge.GatewayAddress(ctx, l1Token)
		if err != nil {
			return err
		}
		gateway = &addr
	}
	if symbol == "" {
		tokenData, err := s.bridge.L1TokenData(ctx, l1Token)
		if err != nil {
			s.logger.WithError(err).WithField("token", l1Token).Warn("can't obtain l1 token data")
			return ErrTokenDataNotFound
		}
		symbol = tokenData.Symbol
	}

	tx, err := s.bridge.ApproveToken(ctx, l1Token)
	if err != nil {
		return err
	}
	OperationResults.WithLabelValues("approve", "ok").Inc()
	s.store.Dispatch(ctx,
		store.SetModalStatus{Status: store.ModalStatusInitiated},
		store.AddTransaction{Tx: &entity.Transaction{
			ChainID: s.pair.L1ChainID,
			Hash:    tx.Hash(),
			From:    account,
			Summary: "Approve " + strings.ToUpper(symbol),
			Approval: &entity.Approval{
				Spender:      *gateway,
				TokenAddress: l1Token,
			},
		}},
	)
	return nil
}

func (s *Service) submitted(ctx context.Context, op string, txn *entity.BridgeTxn) {
	s.logger.WithFields(logrus.Fields{
		"operation": op,
		"chain_id":  txn.ChainID,
		"tx_hash":   txn.TxHash,
		"value":     txn.Value,
		"asset":     txn.AssetName,
	}).Info("bridge transaction submitted")
	OperationResults.WithLabelValues(op, "ok").Inc()
	s.store.Dispatch(ctx,
		store.SetModalStatus{Status: store.ModalStatusInitiated},
		store.AddBridgeTxn{Txn: txn},
	)
}
