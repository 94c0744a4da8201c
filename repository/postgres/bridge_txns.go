package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/swapr/bridge-tracker/db"
	"github.com/swapr/bridge-tracker/entity"
	"github.com/swapr/bridge-tracker/network"
)

var bridgeTxnColumns = []string{
	"chain_id", "tx_hash", "type", "status", "asset_name", "asset_type", "asset_address_l1", "asset_address_l2",
	"value", "sender", "receipt", "seq_num", "batch_number", "batch_index", "outgoing_message_state",
	"partner_tx_hash", "partner_chain_id",
}

type bridgeTxnRow struct {
	ChainID              uint64          `db:"chain_id"`
	TxHash               common.Hash     `db:"tx_hash"`
	Type                 string          `db:"type"`
	Status               string          `db:"status"`
	AssetName            string          `db:"asset_name"`
	AssetType            string          `db:"asset_type"`
	AssetAddressL1       *common.Address `db:"asset_address_l1"`
	AssetAddressL2       *common.Address `db:"asset_address_l2"`
	Value                string          `db:"value"`
	Sender               common.Address  `db:"sender"`
	Receipt              sql.NullString  `db:"receipt"`
	SeqNum               sql.NullString  `db:"seq_num"`
	BatchNumber          sql.NullString  `db:"batch_number"`
	BatchIndex           sql.NullString  `db:"batch_index"`
	OutgoingMessageState sql.NullString  `db:"outgoing_message_state"`
	PartnerTxHash        *common.Hash    `db:"partner_tx_hash"`
	PartnerChainID       sql.NullInt64   `db:"partner_chain_id"`
	CreatedAt            time.Time       `db:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at"`
}

func newBridgeTxnRow(txn *entity.BridgeTxn) (*bridgeTxnRow, error) {
	row := &bridgeTxnRow{
		ChainID:        uint64(txn.ChainID),
		TxHash:         txn.TxHash,
		Type:           string(txn.Type),
		Status:         string(txn.Status),
		AssetName:      txn.AssetName,
		AssetType:      string(txn.AssetType),
		AssetAddressL1: txn.AssetAddressL1,
		AssetAddressL2: txn.AssetAddressL2,
		Value:          txn.Value,
		Sender:         txn.Sender,
		PartnerTxHash:  txn.PartnerTxHash,
	}
	if txn.Receipt != nil {
		blob, err := json.Marshal(txn.Receipt)
		if err != nil {
			return nil, fmt.Errorf("can't encode receipt: %w", err)
		}
		row.Receipt = sql.NullString{String: string(blob), Valid: true}
	}
	if txn.PartnerChainID != 0 {
		row.PartnerChainID = sql.NullInt64{Int64: int64(txn.PartnerChainID), Valid: true}
	}
	if txn.Deposit != nil {
		row.SeqNum = bigToNullString(txn.Deposit.SeqNum)
	}
	if txn.Withdrawal != nil {
		row.BatchNumber = bigToNullString(txn.Withdrawal.BatchNumber)
		row.BatchIndex = bigToNullString(txn.Withdrawal.BatchIndex)
		if state := txn.Withdrawal.OutgoingMessageState; state != entity.OutgoingMessageStateUnknown {
			row.OutgoingMessageState = sql.NullString{String: string(state), Valid: true}
		}
	}
	return row, nil
}

func (row *bridgeTxnRow) values() []interface{} {
	return []interface{}{
		row.ChainID, row.TxHash, row.Type, row.Status, row.AssetName, row.AssetType, row.AssetAddressL1, row.AssetAddressL2,
		row.Value, row.Sender, row.Receipt, row.SeqNum, row.BatchNumber, row.BatchIndex, row.OutgoingMessageState,
		row.PartnerTxHash, row.PartnerChainID,
	}
}

func (row *bridgeTxnRow) toEntity() (*entity.BridgeTxn, error) {
	createdAt, updatedAt := row.CreatedAt, row.UpdatedAt
	txn := &entity.BridgeTxn{
		ChainID:        network.ChainID(row.ChainID),
		TxHash:         row.TxHash,
		Type:           entity.TxnType(row.Type),
		Status:         entity.TxnStatus(row.Status),
		AssetName:      row.AssetName,
		AssetType:      entity.AssetType(row.AssetType),
		AssetAddressL1: row.AssetAddressL1,
		AssetAddressL2: row.AssetAddressL2,
		Value:          row.Value,
		Sender:         row.Sender,
		PartnerTxHash:  row.PartnerTxHash,
		PartnerChainID: network.ChainID(row.PartnerChainID.Int64),
		CreatedAt:      &createdAt,
		UpdatedAt:      &updatedAt,
	}
	if row.Receipt.Valid {
		txn.Receipt = new(types.Receipt)
		if err := json.Unmarshal([]byte(row.Receipt.String), txn.Receipt); err != nil {
			return nil, fmt.Errorf("can't decode receipt of %s: %w", row.TxHash, err)
		}
	}
	if txn.Type.IsDeposit() {
		txn.Deposit = &entity.DepositInfo{SeqNum: nullStringToBig(row.SeqNum)}
	}
	if txn.Type == entity.TxnTypeWithdraw {
		txn.Withdrawal = &entity.WithdrawalInfo{
			BatchNumber:          nullStringToBig(row.BatchNumber),
			BatchIndex:           nullStringToBig(row.BatchIndex),
			OutgoingMessageState: entity.OutgoingMessageState(row.OutgoingMessageState.String),
		}
	}
	return txn, nil
}

type bridgeTxnsRepo basePostgresRepo

func NewBridgeTxnsRepo(table string, db *db.DB) entity.BridgeTxnsRepo {
	return (*bridgeTxnsRepo)(newBasePostgresRepo(table, db))
}

func (r *bridgeTxnsRepo) Ensure(ctx context.Context, txns ...*entity.BridgeTxn) error {
	if len(txns) == 0 {
		return nil
	}
	b := sq.Insert(r.table).Columns(bridgeTxnColumns...)
	for _, txn := range txns {
		row, err := newBridgeTxnRow(txn)
		if err != nil {
			return err
		}
		b = b.Values(row.values()...)
	}
	q, args, err := b.
		Suffix("ON CONFLICT (chain_id, tx_hash) DO UPDATE SET updated_at = NOW(), " +
			"status = EXCLUDED.status, " +
			"receipt = COALESCE(EXCLUDED.receipt, " + r.table + ".receipt), " +
			"seq_num = COALESCE(EXCLUDED.seq_num, " + r.table + ".seq_num), " +
			"batch_number = COALESCE(EXCLUDED.batch_number, " + r.table + ".batch_number), " +
			"batch_index = COALESCE(EXCLUDED.batch_index, " + r.table + ".batch_index), " +
			"outgoing_message_state = COALESCE(EXCLUDED.outgoing_message_state, " + r.table + ".outgoing_message_state), " +
			"partner_tx_hash = COALESCE(EXCLUDED.partner_tx_hash, " + r.table + ".partner_tx_hash), " +
			"partner_chain_id = COALESCE(EXCLUDED.partner_chain_id, " + r.table + ".partner_chain_id)").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("can't build query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("can't insert bridge transactions: %w", err)
	}
	return nil
}

func (r *bridgeTxnsRepo) GetByHash(ctx context.Context, chainID network.ChainID, txHash common.Hash) (*entity.BridgeTxn, error) {
	q, args, err := sq.Select("*").
		From(r.table).
		Where(sq.Eq{"chain_id": uint64(chainID), "tx_hash": txHash}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	row := new(bridgeTxnRow)
	err = r.db.GetContext(ctx, row, q, args...)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("can't get bridge transaction: %w", err)
	}
	return row.toEntity()
}

func (r *bridgeTxnsRepo) FindAll(ctx context.Context) ([]*entity.BridgeTxn, error) {
	return r.find(ctx, nil)
}

func (r *bridgeTxnsRepo) FindBySender(ctx context.Context, sender common.Address) ([]*entity.BridgeTxn, error) {
	return r.find(ctx, sq.Eq{"sender": sender})
}

func (r *bridgeTxnsRepo) find(ctx context.Context, cond sq.Sqlizer) ([]*entity.BridgeTxn, error) {
	b := sq.Select("*").From(r.table)
	if cond != nil {
		b = b.Where(cond)
	}
	q, args, err := b.
		OrderBy("chain_id", "tx_hash").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	rows := make([]*bridgeTxnRow, 0, 16)
	err = r.db.SelectContext(ctx, &rows, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't get bridge transactions: %w", err)
	}
	res := make([]*entity.BridgeTxn, 0, len(rows))
	for _, row := range rows {
		txn, err2 := row.toEntity()
		if err2 != nil {
			return nil, err2
		}
		res = append(res, txn)
	}
	return res, nil
}
