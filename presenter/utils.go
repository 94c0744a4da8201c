package presenter

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/swapr/bridge-tracker/entity"
	"github.com/swapr/bridge-tracker/network"
)

var formats = map[network.ChainID]string{
	network.Mainnet:         "https://etherscan.io/tx/%s",
	network.Rinkeby:         "https://rinkeby.etherscan.io/tx/%s",
	network.XDai:            "https://blockscout.com/xdai/mainnet/tx/%s",
	network.ArbitrumOne:     "https://arbiscan.io/tx/%s",
	network.ArbitrumRinkeby: "https://testnet.arbiscan.io/tx/%s",
}

func txLink(chainID network.ChainID, txHash common.Hash) string {
	if format, ok := formats[chainID]; ok {
		return fmt.Sprintf(format, txHash)
	}
	return txHash.String()
}

func bridgeTxnToResult(txn *entity.BridgeTxn) *BridgeTxnResult {
	res := &BridgeTxnResult{
		BridgeTxn: txn,
		Link:      txLink(txn.ChainID, txn.TxHash),
	}
	if txn.PartnerTxHash != nil {
		res.PartnerLink = txLink(txn.PartnerChainID, *txn.PartnerTxHash)
	}
	return res
}

func bridgeTxnsToResults(txns []*entity.BridgeTxn) []*BridgeTxnResult {
	res := make([]*BridgeTxnResult, len(txns))
	for i, txn := range txns {
		res[i] = bridgeTxnToResult(txn)
	}
	return res
}
