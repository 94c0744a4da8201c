package network

import (
	"strconv"
)

// ChainID identifies an EVM chain. Zero means "no chain selected".
type ChainID uint64

const (
	Mainnet         ChainID = 1
	Rinkeby         ChainID = 4
	XDai            ChainID = 100
	ArbitrumOne     ChainID = 42161
	ArbitrumRinkeby ChainID = 421611
)

func (c ChainID) String() string {
	return strconv.FormatUint(uint64(c), 10)
}

func ParseChainID(s string) (ChainID, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ChainID(id), nil
}

type Info struct {
	ChainID        ChainID
	Name           string
	IsArbitrum     bool
	PartnerChainID ChainID
}

var defaultNetworks = []Info{
	{ChainID: Mainnet, Name: "Ethereum Mainnet", PartnerChainID: ArbitrumOne},
	{ChainID: Rinkeby, Name: "Rinkeby", PartnerChainID: ArbitrumRinkeby},
	{ChainID: XDai, Name: "xDai"},
	{ChainID: ArbitrumOne, Name: "Arbitrum One", IsArbitrum: true, PartnerChainID: Mainnet},
	{ChainID: ArbitrumRinkeby, Name: "Arbitrum Rinkeby", IsArbitrum: true, PartnerChainID: Rinkeby},
}
