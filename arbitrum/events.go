package arbitrum

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/swapr/bridge-tracker/contract/arbabi"
	"github.com/swapr/bridge-tracker/network"
)

var seqNumFlag = new(big.Int).Lsh(big.NewInt(1), 255)

// CalculateL2TransactionHash derives the hash of the L2 transaction created for an inbox message.
func CalculateL2TransactionHash(seqNum *big.Int, l2ChainID network.ChainID) common.Hash {
	requestID := new(big.Int).Or(seqNum, seqNumFlag)
	return crypto.Keccak256Hash(
		common.LeftPadBytes(new(big.Int).SetUint64(uint64(l2ChainID)).Bytes(), 32),
		common.LeftPadBytes(requestID.Bytes(), 32),
	)
}

// ParseInboxSeqNums extracts the sequence numbers of the messages the inbox
// delivered in the given L1 receipt. Logs of other contracts are skipped
// unless inbox is the zero address.
func ParseInboxSeqNums(receipt *types.Receipt, inbox common.Address) []*big.Int {
	if receipt == nil {
		return nil
	}
	var res []*big.Int
	for _, log := range receipt.Logs {
		if inbox != (common.Address{}) && log.Address != inbox {
			continue
		}
		if len(log.Topics) < 2 {
			continue
		}
		switch log.Topics[0] {
		case arbabi.InboxMessageDeliveredEventSignature, arbabi.InboxMessageDeliveredFromOriginEventSignature:
			res = append(res, new(big.Int).SetBytes(log.Topics[1][:]))
		}
	}
	return res
}

// ParseL2ToL1Events extracts outgoing messages emitted by ArbSys in the given L2 receipt.
func ParseL2ToL1Events(receipt *types.Receipt) []*L2ToL1Event {
	if receipt == nil {
		return nil
	}
	var res []*L2ToL1Event
	for _, log := range receipt.Logs {
		if log.Address != arbabi.ArbSysAddress {
			continue
		}
		event, data, err := arbabi.ArbSysABI.ParseLog(log)
		if err != nil || event != arbabi.L2ToL1Transaction {
			continue
		}
		res = append(res, &L2ToL1Event{
			Caller:       data["caller"].(common.Address),
			Destination:  data["destination"].(common.Address),
			UniqueID:     data["uniqueId"].(*big.Int),
			BatchNumber:  data["batchNumber"].(*big.Int),
			IndexInBatch: data["indexInBatch"].(*big.Int),
			ArbBlockNum:  data["arbBlockNum"].(*big.Int),
			EthBlockNum:  data["ethBlockNum"].(*big.Int),
			Timestamp:    data["timestamp"].(*big.Int),
			CallValue:    data["callvalue"].(*big.Int),
			Data:         data["data"].([]byte),
		})
	}
	return res
}
