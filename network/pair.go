package network

type Pair struct {
	L1ChainID      ChainID `json:"l1ChainId"`
	L2ChainID      ChainID `json:"l2ChainId"`
	ChainID        ChainID `json:"chainId"`
	PartnerChainID ChainID `json:"partnerChainId"`
	IsArbitrum     bool    `json:"isArbitrum"`
}

// Paired reports whether both sides of the bridge are known.
func (p Pair) Paired() bool {
	return p.L1ChainID != 0 && p.L2ChainID != 0
}

type Resolver struct {
	networks map[ChainID]Info
}

// NewResolver builds a resolver over the built-in network table.
// Extra entries override built-in ones with the same chain id.
func NewResolver(extra ...Info) *Resolver {
	r := &Resolver{
		networks: make(map[ChainID]Info, len(defaultNetworks)+len(extra)),
	}
	for _, info := range defaultNetworks {
		r.networks[info.ChainID] = info
	}
	for _, info := range extra {
		r.networks[info.ChainID] = info
	}
	return r
}

func (r *Resolver) Info(chainID ChainID) (Info, bool) {
	info, ok := r.networks[chainID]
	return info, ok
}

func (r *Resolver) Resolve(chainID ChainID) Pair {
	if chainID == 0 {
		return Pair{}
	}

	info, ok := r.networks[chainID]
	if !ok || info.PartnerChainID == 0 {
		return Pair{
			L1ChainID: chainID,
			ChainID:   chainID,
		}
	}

	pair := Pair{
		ChainID:        chainID,
		PartnerChainID: info.PartnerChainID,
		IsArbitrum:     info.IsArbitrum,
	}
	if info.IsArbitrum {
		pair.L1ChainID, pair.L2ChainID = info.PartnerChainID, chainID
	} else {
		pair.L1ChainID, pair.L2ChainID = chainID, info.PartnerChainID
	}
	return pair
}

var defaultResolver = NewResolver()

func Resolve(chainID ChainID) Pair {
	return defaultResolver.Resolve(chainID)
}
